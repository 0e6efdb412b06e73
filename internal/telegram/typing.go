package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// typingInterval keeps the indicator alive; the client hides it after ~5s.
const typingInterval = 4 * time.Second

// startTyping shows the "typing" indicator until cancel is called. cancel does
// not block; wait blocks until the indicator goroutine has exited.
func (b *Bot) startTyping(ctx context.Context, chatID int64) (cancel func(), wait func()) {
	ctx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(b.typingEvery)
		defer t.Stop()
		for {
			if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
				b.log.Debug("typing indicator failed", zap.Int64("chat_id", chatID), zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
	return stop, func() { <-done }
}
