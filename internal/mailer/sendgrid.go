package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig holds the configuration for SendGrid delivery
type SendGridConfig struct {
	APIKey string
}

// SendGridSender delivers mail through the SendGrid API
type SendGridSender struct {
	cfg    Config
	logger Logger
}

func (s *SendGridSender) SendVerificationEmail(ctx context.Context, address, token string) error {
	return s.send(ctx, address, verificationMessage(s.cfg.BaseURL, token))
}

func (s *SendGridSender) SendPasswordResetEmail(ctx context.Context, address, token string) error {
	return s.send(ctx, address, passwordResetMessage(s.cfg.BaseURL, token))
}

func (s *SendGridSender) send(ctx context.Context, address string, msg message) error {
	from := mail.NewEmail("", s.cfg.From)
	to := mail.NewEmail("", address)
	email := mail.NewSingleEmail(from, msg.subject, to, msg.body, "")

	client := sendgrid.NewSendClient(s.cfg.SendGrid.APIKey)
	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		s.logger.Error("sendgrid send to %s failed: %v", address, err)
		return err
	}
	if resp.StatusCode >= 300 {
		err := fmt.Errorf("sendgrid rejected message, status code: %d", resp.StatusCode)
		s.logger.Error("sendgrid send to %s failed: %v", address, err)
		return err
	}
	s.logger.Info("sendgrid mail sent to %s", address)
	return nil
}

func validateSendGridConfig(c SendGridConfig) error {
	if c.APIKey == "" {
		return errors.New("invalid sendgrid configuration")
	}
	return nil
}
