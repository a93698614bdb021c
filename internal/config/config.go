// Package config loads runtime settings from defaults, an optional YAML
// file, and TASKFORGE_* environment variables, in increasing precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting for the server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Debug bool   `mapstructure:"debug"`
}

// DatabaseConfig holds the store DSN. Postgres DSNs use pgx; anything
// else is treated as a SQLite path.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// JWTConfig holds access token settings.
type JWTConfig struct {
	SigningKey  string        `mapstructure:"signing_key"`
	Issuer      string        `mapstructure:"issuer"`
	Audience    []string      `mapstructure:"audience"`
	AccessTTL   time.Duration `mapstructure:"access_ttl"`
	RefreshDays int           `mapstructure:"refresh_days"`
}

// AuthConfig holds credential hashing settings.
type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// MailConfig selects and configures the notification provider.
type MailConfig struct {
	Provider string         `mapstructure:"provider"`
	BaseURL  string         `mapstructure:"base_url"`
	From     string         `mapstructure:"from"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SendGridConfig holds SendGrid API settings.
type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds a Config from defaults, the optional file at path, and
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.debug", false)
	v.SetDefault("database.dsn", "file:taskforge.db")
	v.SetDefault("jwt.signing_key", "dev-signing-key-change-me")
	v.SetDefault("jwt.issuer", "taskforge")
	v.SetDefault("jwt.audience", []string{"taskforge"})
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_days", 7)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.base_url", "http://localhost:3000")
	v.SetDefault("mail.from", "no-reply@taskforge.local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("TASKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
