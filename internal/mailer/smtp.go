package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
)

// SMTPConfig holds the configuration for plain SMTP delivery
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

// SMTPSender delivers mail over a plain SMTP relay
type SMTPSender struct {
	cfg    Config
	logger Logger
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, address, token string) error {
	return s.send(ctx, address, verificationMessage(s.cfg.BaseURL, token))
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, address, token string) error {
	return s.send(ctx, address, passwordResetMessage(s.cfg.BaseURL, token))
}

func (s *SMTPSender) send(_ context.Context, address string, msg message) error {
	c := s.cfg.SMTP
	auth := smtp.PlainAuth("", c.Username, c.Password, c.Host)
	raw := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s", address, s.cfg.From, msg.subject, msg.body))

	if err := smtp.SendMail(fmt.Sprintf("%s:%s", c.Host, c.Port), auth, s.cfg.From, []string{address}, raw); err != nil {
		s.logger.Error("smtp send to %s failed: %v", address, err)
		return err
	}
	s.logger.Info("smtp mail sent to %s", address)
	return nil
}

func validateSMTPConfig(c SMTPConfig) error {
	if c.Host == "" || c.Port == "" {
		return errors.New("invalid smtp configuration")
	}
	return nil
}
