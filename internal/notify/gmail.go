package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"lead-assistant/internal/contact"
)

const emailSubject = "Новый контакт от потенциального клиента"

type oauthCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// credentialsFile is the layout downloaded from Google Cloud Console.
type credentialsFile struct {
	Installed *oauthCredentials `json:"installed,omitempty"`
	Web       *oauthCredentials `json:"web,omitempty"`
}

// Gmail e-mails leads to the operator's mailbox.
type Gmail struct {
	to   string
	send func(ctx context.Context, raw string) error
	now  func() time.Time
}

// NewGmail builds a notifier from an OAuth client credentials file and a
// long-lived refresh token.
func NewGmail(ctx context.Context, credentialsPath, refreshToken, to string) (*Gmail, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	creds, err := parseCredentials(data)
	if err != nil {
		return nil, err
	}
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
	client := cfg.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return newGmail(to, func(ctx context.Context, raw string) error {
		_, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	}), nil
}

func newGmail(to string, send func(ctx context.Context, raw string) error) *Gmail {
	return &Gmail{to: to, send: send, now: time.Now}
}

func (g *Gmail) Notify(ctx context.Context, rec contact.Record) error {
	raw := base64.URLEncoding.EncodeToString([]byte(buildMessage(g.to, FormatContact(rec, g.now()))))
	if err := g.send(ctx, raw); err != nil {
		return fmt.Errorf("gmail notify: %w", err)
	}
	return nil
}

func buildMessage(to, body string) string {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.BEncoding.Encode("utf-8", emailSubject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	sb.WriteString(base64.StdEncoding.EncodeToString([]byte(body)))
	return sb.String()
}

// parseCredentials accepts both the bare client object and the Cloud Console file.
func parseCredentials(data []byte) (*oauthCredentials, error) {
	var direct oauthCredentials
	if err := json.Unmarshal(data, &direct); err == nil && direct.ClientID != "" && direct.ClientSecret != "" {
		return &direct, nil
	}
	var file credentialsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse gmail credentials: %w", err)
	}
	switch {
	case file.Installed != nil:
		return file.Installed, nil
	case file.Web != nil:
		return file.Web, nil
	}
	return nil, errors.New("no valid credentials found: expected 'installed' or 'web' section")
}
