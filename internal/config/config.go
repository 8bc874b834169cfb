package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "buddy", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	SessionSecret  string `env:"SESSION_SECRET" envDefault:"dev-secret-change-me"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	StreamVideoAPIKey    string `env:"STREAM_VIDEO_API_KEY"`
	StreamVideoSecretKey string `env:"STREAM_VIDEO_SECRET_KEY"`
	StreamVideoBaseURL   string `env:"STREAM_VIDEO_BASE_URL" envDefault:"https://video.stream-io-api.com"`
	StreamChatAPIKey     string `env:"STREAM_CHAT_API_KEY"`
	StreamChatSecretKey  string `env:"STREAM_CHAT_SECRET_KEY"`
	StreamChatBaseURL    string `env:"STREAM_CHAT_BASE_URL" envDefault:"https://chat.stream-io-api.com"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`

	ExternalHTTPTimeoutSeconds int    `env:"EXTERNAL_HTTP_TIMEOUT_SECONDS" envDefault:"10"`
	ReconcileSchedule          string `env:"RECONCILE_SCHEDULE" envDefault:"@every 1m"`
	SentryDSN                  string `env:"SENTRY_DSN"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) ExternalHTTPTimeout() time.Duration {
	if c.ExternalHTTPTimeoutSeconds <= 0 {
		return DefaultExternalHTTPTimeout
	}
	return time.Duration(c.ExternalHTTPTimeoutSeconds) * time.Second
}

// StreamConfigured reports whether both video platform credentials are set.
func (c *Config) StreamConfigured() bool {
	return c.StreamVideoAPIKey != "" && c.StreamVideoSecretKey != ""
}

func (c *Config) Validate() error {
	if c.ReconcileSchedule == "" {
		return fmt.Errorf("RECONCILE_SCHEDULE must not be empty")
	}

	if c.IsProduction() {
		if err := validateSecret("SESSION_SECRET", c.SessionSecret); err != nil {
			return err
		}
		if !c.StreamConfigured() {
			return fmt.Errorf("STREAM_VIDEO_API_KEY and STREAM_VIDEO_SECRET_KEY are required in production")
		}

		if c.StreamChatAPIKey == "" || c.StreamChatSecretKey == "" {
			log.Warn().Msg("STREAM_CHAT_API_KEY or STREAM_CHAT_SECRET_KEY is empty in production: chat tokens will fail")
		}
		if c.StripeSecretKey == "" {
			log.Warn().Msg("STRIPE_SECRET_KEY is empty in production: premium procedures are disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.SentryDSN == "" {
			log.Warn().Msg("SENTRY_DSN is empty in production: errors will only be logged")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
