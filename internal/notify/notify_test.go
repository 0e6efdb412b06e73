package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-assistant/internal/contact"
)

var lead = contact.Record{
	FirstName:      "Иван",
	LastName:       "Петров",
	PhoneNumber:    "+79161234567",
	Username:       "ivanp",
	UserID:         42,
	AdditionalInfo: "лендинг",
	Source:         contact.SourceAIExtraction,
}

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestFormatContact(t *testing.T) {
	got := FormatContact(lead, fixedNow)
	assert.True(t, strings.HasPrefix(got, "📱 НОВЫЙ КОНТАКТ от потенциального клиента!\n\n"))
	assert.Contains(t, got, "👤 Имя: Иван Петров\n")
	assert.Contains(t, got, "📞 Телефон: +79161234567\n")
	assert.NotContains(t, got, "Email")
	assert.Contains(t, got, "🔗 Username: @ivanp\n")
	assert.Contains(t, got, "🆔 User ID: 42\n")
	assert.Contains(t, got, "💬 Комментарий: лендинг\n")
	assert.True(t, strings.HasSuffix(got, "⏰ Время: 2025-05-01 12:00:00"))
}

func TestFormatContact_UsesRecordTimestamp(t *testing.T) {
	rec := lead
	rec.Timestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Contains(t, FormatContact(rec, fixedNow), "2024-01-02 03:04:05")
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Notify(context.Context, contact.Record) error {
	f.calls++
	return f.err
}

func TestMulti_AttemptsAllAndJoinsErrors(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	a, b, c := &fakeNotifier{err: e1}, &fakeNotifier{}, &fakeNotifier{err: e2}

	err := Multi{a, nil, b, c}.Notify(context.Background(), lead)

	require.Error(t, err)
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)
	assert.NoError(t, Multi{b}.Notify(context.Background(), lead))
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegram_Notify(t *testing.T) {
	fs := &fakeSender{}
	n := NewTelegram(fs, 1001)
	n.now = func() time.Time { return fixedNow }

	require.NoError(t, n.Notify(context.Background(), lead))
	require.Len(t, fs.sent, 1)
	msg, ok := fs.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(1001), msg.ChatID)
	assert.Equal(t, FormatContact(lead, fixedNow), msg.Text)
}

func TestTelegram_NoOperatorIsNoop(t *testing.T) {
	fs := &fakeSender{}
	require.NoError(t, NewTelegram(fs, 0).Notify(context.Background(), lead))
	assert.Empty(t, fs.sent)
}

func TestTelegram_WrapsSendError(t *testing.T) {
	boom := errors.New("blocked")
	err := NewTelegram(&fakeSender{err: boom}, 1).SendText("hi")
	assert.ErrorIs(t, err, boom)
}

func TestGmail_Notify(t *testing.T) {
	var raw string
	g := newGmail("ops@example.com", func(_ context.Context, r string) error {
		raw = r
		return nil
	})
	g.now = func() time.Time { return fixedNow }

	require.NoError(t, g.Notify(context.Background(), lead))

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	head, body, found := strings.Cut(string(decoded), "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, head, "To: ops@example.com\r\n")
	assert.Contains(t, head, "Subject: =?utf-8?b?")
	text, err := base64.StdEncoding.DecodeString(body)
	require.NoError(t, err)
	assert.Equal(t, FormatContact(lead, fixedNow), string(text))
}

func TestGmail_WrapsSendError(t *testing.T) {
	boom := errors.New("401")
	g := newGmail("ops@example.com", func(context.Context, string) error { return boom })
	assert.ErrorIs(t, g.Notify(context.Background(), lead), boom)
}

func TestParseCredentials(t *testing.T) {
	c, err := parseCredentials([]byte(`{"installed":{"client_id":"id","client_secret":"s"}}`))
	require.NoError(t, err)
	assert.Equal(t, "id", c.ClientID)

	c, err = parseCredentials([]byte(`{"client_id":"d","client_secret":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "d", c.ClientID)

	_, err = parseCredentials([]byte(`{"other":{}}`))
	assert.Error(t, err)
}

func TestNewGmail_MissingFile(t *testing.T) {
	_, err := NewGmail(context.Background(), filepath.Join(t.TempDir(), "none.json"), "rt", "ops@example.com")
	assert.Error(t, err)
}

func TestNewGmail_BuildsService(t *testing.T) {
	p := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"web":{"client_id":"id","client_secret":"s"}}`), 0o600))
	g, err := NewGmail(context.Background(), p, "rt", "ops@example.com")
	require.NoError(t, err)
	assert.NotNil(t, g.send)
}
