package service

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer stands in for SMTP in development: it logs the message instead of sending it.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "log_mailer").Logger()}
}

// Send logs the message and returns nil to indicate success.
func (l *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	l.logger.Info().Str("to", to).Str("subject", subject).Msg("mail delivery skipped, smtp not configured")
	return nil
}
