// Package notify tells the operator about captured leads.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead-assistant/internal/contact"
)

// Notifier delivers a lead to the operator.
type Notifier interface {
	Notify(ctx context.Context, rec contact.Record) error
}

// BotStartedText is sent to the operator once the bot is polling.
const BotStartedText = "✅ Бот успешно запущен и готов к работе!\nВведите команду /start для начала работы."

const timeLayout = "2006-01-02 15:04:05"

// FormatContact renders a lead for the operator. A zero timestamp renders as now.
func FormatContact(rec contact.Record, now time.Time) string {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = now
	}
	var sb strings.Builder
	sb.WriteString("📱 НОВЫЙ КОНТАКТ от потенциального клиента!\n\n")
	fmt.Fprintf(&sb, "👤 Имя: %s\n", strings.TrimSpace(rec.FullName()))
	if rec.PhoneNumber != "" {
		fmt.Fprintf(&sb, "📞 Телефон: %s\n", rec.PhoneNumber)
	}
	if rec.Email != "" {
		fmt.Fprintf(&sb, "📧 Email: %s\n", rec.Email)
	}
	fmt.Fprintf(&sb, "🔗 Username: @%s\n", rec.Username)
	fmt.Fprintf(&sb, "🆔 User ID: %d\n", rec.UserID)
	if rec.AdditionalInfo != "" {
		fmt.Fprintf(&sb, "💬 Комментарий: %s\n", rec.AdditionalInfo)
	}
	fmt.Fprintf(&sb, "📌 Источник: %s\n", rec.Source)
	fmt.Fprintf(&sb, "⏰ Время: %s", ts.Format(timeLayout))
	return sb.String()
}

// Multi fans a lead out to every notifier. All are attempted; errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, rec contact.Record) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
