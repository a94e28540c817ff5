package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Rolodex", from),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, email Email) error {
	message := mail.NewSingleEmail(m.from, email.Subject, mail.NewEmail("", email.To), email.Text, email.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned status %d", resp.StatusCode)
	}

	return nil
}

// LogMailer writes emails to the log instead of sending them. Used when no
// provider key is configured.
type LogMailer struct {
	log logrus.FieldLogger
}

func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.log.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Info(email.Text)
	return nil
}

func verificationEmail(to, baseURL, code string) Email {
	link := fmt.Sprintf("%s/api/auth/verify/%s", baseURL, code)

	return Email{
		To:      to,
		Subject: "Verify your email",
		Text:    "Open this link to verify your email: " + link,
		HTML:    fmt.Sprintf(`<a target="_blank" href="%s">Click to verify your email</a>`, link),
	}
}
