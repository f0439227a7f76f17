package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends plain text mail through an SMTP relay.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// New constructs an SMTP mailer.
func New(cfg Config, logger zerolog.Logger) (*SMTP, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and sender must be provided")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger.With().Str("component", "mailer").Logger(),
	}, nil
}

// Send delivers one message. gomail has no context support, so ctx is only checked up front.
func (m *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Info().Str("subject", subject).Msg("mail sent")
	return nil
}
