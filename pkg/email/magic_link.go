package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var magicLinkTemplate = template.Must(template.ParseFS(templateFS, "templates/magic_link.html"))

const magicLinkSubject = "Your conference login link"

// MagicLinkMailer renders and sends login link emails.
type MagicLinkMailer struct {
	sender    Sender
	expiresIn time.Duration
}

func NewMagicLinkMailer(sender Sender, expiresIn time.Duration) *MagicLinkMailer {
	return &MagicLinkMailer{sender: sender, expiresIn: expiresIn}
}

func (m *MagicLinkMailer) Render(name, link string) (Message, error) {
	data := map[string]interface{}{
		"Name":      name,
		"Link":      link,
		"ExpiresIn": formatDuration(m.expiresIn),
		"Year":      time.Now().Year(),
	}

	var body bytes.Buffer
	if err := magicLinkTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render magic link: %w", err)
	}

	return Message{
		Subject: magicLinkSubject,
		HTML:    body.String(),
		Text: fmt.Sprintf("Hi %s,\n\nSign in to the conference app: %s\n\nThis link expires in %s and can only be used once.\n",
			name, link, formatDuration(m.expiresIn)),
	}, nil
}

func (m *MagicLinkMailer) Send(ctx context.Context, to, name, link string) (string, error) {
	msg, err := m.Render(name, link)
	if err != nil {
		return "", err
	}
	msg.To = to
	return m.sender.Send(ctx, msg)
}

func formatDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
