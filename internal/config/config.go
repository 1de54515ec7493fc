package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamo   = "dynamo"
)

// devSessionSecret is only accepted when APP_ENV=development.
const devSessionSecret = "fallback_secret_key"

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"5000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`

	Store   StoreConfig
	AWS     AWSConfig
	SMTP    SMTPConfig
	Session SessionConfig

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// StoreConfig selects the user record backend.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"STORE_DSN" envDefault:"database.db"`
}

// AWSConfig is used by the dynamo driver. EndpointURL is empty in prod and
// points at LocalStack in dev.
type AWSConfig struct {
	Region      string `env:"AWS_REGION" envDefault:"us-east-1"`
	EndpointURL string `env:"AWS_ENDPOINT_URL"`
	AccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	UsersTable  string `env:"DYNAMO_TABLE_USERS" envDefault:"users"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"localhost"`
	Port     string `env:"SMTP_PORT" envDefault:"1025"`
	From     string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"Matchmaker"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// Load reads all configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs with APP_ENV=development.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// Validate checks cross-field constraints. In development a missing session
// secret is replaced by a fixed insecure one.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("STORE_DSN is required for SQL store drivers")
		}
	case DriverDynamo:
		if c.AWS.UsersTable == "" {
			return errors.New("DYNAMO_TABLE_USERS is required for the dynamo store driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Session.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("SESSION_SECRET is required outside development")
		}
		c.Session.Secret = devSessionSecret
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// UsesFallbackSecret reports whether the development session secret is in use.
func (c *Config) UsesFallbackSecret() bool { return c.Session.Secret == devSessionSecret }
