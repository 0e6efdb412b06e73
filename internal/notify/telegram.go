package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lead-assistant/internal/contact"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends leads to the operator's chat.
type Telegram struct {
	api    sender
	chatID int64
	now    func() time.Time
}

func NewTelegram(api sender, operatorChatID int64) *Telegram {
	return &Telegram{api: api, chatID: operatorChatID, now: time.Now}
}

func (t *Telegram) Notify(_ context.Context, rec contact.Record) error {
	return t.SendText(FormatContact(rec, t.now()))
}

// SendText delivers an arbitrary operator message.
func (t *Telegram) SendText(text string) error {
	if t.chatID == 0 {
		return nil
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}
