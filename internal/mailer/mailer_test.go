package mailer_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/mailer"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestNewSender(t *testing.T) {
	logger := &recordingLogger{}

	t.Run("defaults to the log provider", func(t *testing.T) {
		sender, err := mailer.NewSender(mailer.Config{}, logger)
		require.NoError(t, err)
		assert.IsType(t, &mailer.LogSender{}, sender)
	})

	t.Run("smtp requires host and port", func(t *testing.T) {
		_, err := mailer.NewSender(mailer.Config{Provider: "smtp"}, logger)
		assert.Error(t, err)

		sender, err := mailer.NewSender(mailer.Config{
			Provider: "smtp",
			SMTP:     mailer.SMTPConfig{Host: "localhost", Port: "2525"},
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &mailer.SMTPSender{}, sender)
	})

	t.Run("sendgrid requires an api key", func(t *testing.T) {
		_, err := mailer.NewSender(mailer.Config{Provider: "sendgrid"}, logger)
		assert.Error(t, err)

		sender, err := mailer.NewSender(mailer.Config{
			Provider: "sendgrid",
			SendGrid: mailer.SendGridConfig{APIKey: "SG.test"},
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &mailer.SendGridSender{}, sender)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		_, err := mailer.NewSender(mailer.Config{Provider: "carrier-pigeon"}, logger)
		assert.Error(t, err)
	})
}

func TestLogSenderIncludesLinks(t *testing.T) {
	ctx := context.Background()
	logger := &recordingLogger{}

	sender, err := mailer.NewSender(mailer.Config{
		Provider: "log",
		BaseURL:  "https://app.example.com",
	}, logger)
	require.NoError(t, err)

	require.NoError(t, sender.SendVerificationEmail(ctx, "user@example.com", "verify-token"))
	require.NoError(t, sender.SendPasswordResetEmail(ctx, "user@example.com", "reset-token"))

	require.Len(t, logger.lines, 2)
	assert.Contains(t, logger.lines[0], "https://app.example.com/api/auth/verify-email?token=verify-token")
	assert.Contains(t, logger.lines[1], "https://app.example.com/reset-password?token=reset-token")
}
