package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "file:taskforge.db", cfg.Database.DSN)
	assert.Equal(t, "taskforge", cfg.JWT.Issuer)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7, cfg.JWT.RefreshDays)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  addr: ":8080"
  debug: true
jwt:
  issuer: custom-issuer
  refresh_days: 30
mail:
  provider: smtp
  smtp:
    host: mail.example.com
    port: "587"
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "custom-issuer", cfg.JWT.Issuer)
	assert.Equal(t, 30, cfg.JWT.RefreshDays)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, "mail.example.com", cfg.Mail.SMTP.Host)

	// unset values keep their defaults
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
