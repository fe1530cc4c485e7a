package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridMailer sends mail through the SendGrid v3 API
type SendGridMailer struct {
	key    string
	from   *sgmail.Email
	host   string
	logger zerolog.Logger
}

var _ Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer creates a SendGridMailer
func NewSendGridMailer(apiKey, fromName, fromEmail string, logger zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{
		key:    apiKey,
		from:   sgmail.NewEmail(fromName, fromEmail),
		host:   sendgridHost,
		logger: logger,
	}
}

func (m *SendGridMailer) prepare(to, subject, htmlBody string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", htmlBody))
	return msg
}

// Send delivers the message synchronously
func (m *SendGridMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.key == "" {
		return ErrNotConfigured
	}

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(to, subject, htmlBody))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		m.logger.Error().Err(err).Str("toEmail", to).Msg("Failed to send email via SendGrid")
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.logger.Error().Int("status", res.StatusCode).Str("body", res.Body).Msg("SendGrid rejected email")
		return fmt.Errorf("sending email: sendgrid status %d", res.StatusCode)
	}
	return nil
}
