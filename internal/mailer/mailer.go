// Package mailer delivers account notification email. The auth flows treat
// it as fire-and-forget: a delivery failure is logged and never rolls back
// the transaction that created the user or token.
package mailer

import (
	"context"
	"errors"
	"fmt"
)

// Sender is the notification contract consumed by the auth flows.
type Sender interface {
	SendVerificationEmail(ctx context.Context, address, token string) error
	SendPasswordResetEmail(ctx context.Context, address, token string) error
}

// Config selects and configures a mail provider.
type Config struct {
	Provider string // "smtp", "sendgrid", or "log"
	BaseURL  string // public URL prefix for links in email bodies
	From     string
	SMTP     SMTPConfig
	SendGrid SendGridConfig
}

// NewSender returns the configured provider. An empty provider falls back
// to the log sender so development setups work without mail credentials.
func NewSender(cfg Config, logger Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		if err := validateSMTPConfig(cfg.SMTP); err != nil {
			return nil, err
		}
		return &SMTPSender{cfg: cfg, logger: logger}, nil
	case "sendgrid":
		if err := validateSendGridConfig(cfg.SendGrid); err != nil {
			return nil, err
		}
		return &SendGridSender{cfg: cfg, logger: logger}, nil
	case "log", "":
		return &LogSender{cfg: cfg, logger: logger}, nil
	default:
		return nil, errors.New("unknown mail provider: " + cfg.Provider)
	}
}

// Logger is the narrow logging contract used by providers.
type Logger interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type message struct {
	subject string
	body    string
}

func verificationMessage(baseURL, token string) message {
	return message{
		subject: "Verify your email address",
		body: fmt.Sprintf(
			"Welcome! Confirm your email address by opening the link below.\n\n%s/api/auth/verify-email?token=%s\n\nThe link expires in 24 hours.",
			baseURL, token,
		),
	}
}

func passwordResetMessage(baseURL, token string) message {
	return message{
		subject: "Reset your password",
		body: fmt.Sprintf(
			"A password reset was requested for your account. Open the link below to choose a new password.\n\n%s/reset-password?token=%s\n\nThe link expires in 1 hour. If you did not request this, ignore this email.",
			baseURL, token,
		),
	}
}

// LogSender writes the notification to the log instead of delivering it.
type LogSender struct {
	cfg    Config
	logger Logger
}

func (s *LogSender) SendVerificationEmail(_ context.Context, address, token string) error {
	msg := verificationMessage(s.cfg.BaseURL, token)
	s.logger.Info("mail (log provider) to=%s subject=%q body=%q", address, msg.subject, msg.body)
	return nil
}

func (s *LogSender) SendPasswordResetEmail(_ context.Context, address, token string) error {
	msg := passwordResetMessage(s.cfg.BaseURL, token)
	s.logger.Info("mail (log provider) to=%s subject=%q body=%q", address, msg.subject, msg.body)
	return nil
}
