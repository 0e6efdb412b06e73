// Package telegram is the Bot API transport: it turns updates into dialog
// turns and commands and sends the replies back.
package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lead-assistant/internal/contact"
	"lead-assistant/internal/dialog"
)

type Dialog interface {
	HandleText(ctx context.Context, in dialog.Incoming) dialog.Reply
	HandleContactCard(ctx context.Context, firstName, lastName, phone string, sender contact.Identity) dialog.Reply
}

type HistoryResetter interface {
	Reset(userID int64)
}

// Knowledge renders the static documents behind the menu commands.
type Knowledge interface {
	PricesText() string
	AllServicesText() (string, bool)
	FAQText(limit int) string
	CompanyText() string
}

// ContactLedger exposes the stored leads to the operator commands.
type ContactLedger interface {
	Count() int
	JSONPath() string
}

// StatsFunc renders today's activity for /stats.
type StatsFunc func(now time.Time) (string, error)

// SendFailureCounter is told about every failed outbound message.
type SendFailureCounter interface {
	SendFailed()
}

type Deps struct {
	Dialog      Dialog
	History     HistoryResetter
	Knowledge   Knowledge
	Contacts    ContactLedger
	Stats       StatsFunc
	Failures    SendFailureCounter
	AdminUserID int64
	MaxLength   int
	Logger      *zap.Logger
}

type Bot struct {
	api *tgbotapi.BotAPI
	s   sender

	dialog      Dialog
	history     HistoryResetter
	kb          Knowledge
	contacts    ContactLedger
	stats       StatsFunc
	failures    SendFailureCounter
	adminUserID int64
	maxLength   int
	typingEvery time.Duration
	log         *zap.Logger
	now         func() time.Time

	wg sync.WaitGroup
}

func New(api *tgbotapi.BotAPI, deps Deps) *Bot {
	b := newBot(api, deps)
	b.api = api
	return b
}

func newBot(s sender, deps Deps) *Bot {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxLen := deps.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}
	return &Bot{
		s:           s,
		dialog:      deps.Dialog,
		history:     deps.History,
		kb:          deps.Knowledge,
		contacts:    deps.Contacts,
		stats:       deps.Stats,
		failures:    deps.Failures,
		adminUserID: deps.AdminUserID,
		maxLength:   maxLen,
		typingEvery: typingInterval,
		log:         log,
		now:         time.Now,
	}
}

// Start long-polls the Bot API until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.log.Info("telegram polling started", zap.String("bot", b.api.Self.UserName))
	b.Serve(ctx, updates)
	return nil
}

// Serve handles updates, one goroutine each, until the channel closes or ctx
// is done, then waits for in-flight handlers.
func (b *Bot) Serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				defer func() {
					if r := recover(); r != nil {
						b.log.Error("update handler panicked", zap.Any("panic", r), zap.Int64("user_id", msg.From.ID))
						b.sendText(msg.Chat.ID, errorText, nil)
					}
				}()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.Contact != nil:
		b.handleContact(ctx, msg)
	case msg.IsCommand():
		b.handleCommand(msg)
	case msg.Text == btnConsultation:
		b.sendText(msg.Chat.ID, consultationText, contactKeyboard())
	case msg.Text == btnServices:
		b.sendServices(msg.Chat.ID)
	case msg.Text == btnAbout:
		b.sendKnowledge(msg.Chat.ID, b.kb.CompanyText())
	case msg.Text == btnBack:
		b.sendText(msg.Chat.ID, backText, mainKeyboard())
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	b.log.Info("incoming message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Int("length", len([]rune(msg.Text))))

	cancel, wait := b.startTyping(ctx, msg.Chat.ID)
	defer wait()

	reply := b.dialog.HandleText(ctx, dialog.Incoming{Sender: identity(msg.From), Text: msg.Text})
	cancel()

	b.log.Info("turn finished",
		zap.String("turn_id", reply.TurnID),
		zap.Int64("user_id", msg.From.ID),
		zap.String("route", string(reply.Route)),
		zap.Bool("contact", reply.Contact != nil))
	b.sendText(msg.Chat.ID, reply.Text, mainKeyboard())
}

func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	c := msg.Contact
	reply := b.dialog.HandleContactCard(ctx, c.FirstName, c.LastName, c.PhoneNumber, identity(msg.From))
	b.sendText(msg.Chat.ID, reply.Text, mainKeyboard())
}

func (b *Bot) sendServices(chatID int64) {
	text, _ := b.kb.AllServicesText()
	b.sendKnowledge(chatID, text)
}

func (b *Bot) sendKnowledge(chatID int64, text string) {
	if text == "" {
		text = unavailableText
	}
	b.sendText(chatID, text, mainKeyboard())
}

// sendText delivers text in chunks; the keyboard rides on the first one.
func (b *Bot) sendText(chatID int64, text string, markup any) {
	for i, part := range splitMessage(text, b.maxLength) {
		out := tgbotapi.NewMessage(chatID, part)
		if i == 0 && markup != nil {
			out.ReplyMarkup = markup
		}
		if _, err := b.s.Send(out); err != nil {
			b.log.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Int("part", i), zap.Error(err))
			if b.failures != nil {
				b.failures.SendFailed()
			}
			return
		}
	}
}

func identity(u *tgbotapi.User) contact.Identity {
	return contact.Identity{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}
