// Package mailer sends transactional email rendered from text templates.
package mailer

import (
	"context"
	"fmt"

	"quickcart/internal/config"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// smtpMailer delivers through an SMTP relay.
type smtpMailer struct {
	client *mail.Client
	from   string
	logger zerolog.Logger
}

// New returns an SMTP mailer, or a log-only mailer when cfg.Disabled is set.
func New(cfg config.MailConfig, logger zerolog.Logger) (Mailer, error) {
	logger = logger.With().Str("component", "mailer").Logger()

	if cfg.Disabled {
		logger.Warn().Msg("mail delivery disabled, messages will only be logged")
		return &logMailer{logger: logger}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("SMTP mailer initialised")

	return &smtpMailer{client: client, from: cfg.From, logger: logger}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	out, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		m.logger.Error().Err(err).Str("to", msg.To).Msg("failed to send mail")
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail sent")
	return nil
}

func buildMessage(from string, msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

// logMailer writes messages to the log instead of sending them.
type logMailer struct {
	logger zerolog.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not sent, delivery disabled")
	return nil
}
