package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
// Defaults target local development.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"go-ddd-auth-api"`
	Env     string `env:"APP_ENV" envDefault:"development"` // development, staging, production
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// Storage: postgres, or memory for local runs without a database
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Database
	DBHost        string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string        `env:"DB_PORT" envDefault:"5432"`
	DBUser        string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword    string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName        string        `env:"DB_NAME" envDefault:"appdb"`
	DBSSLMode     string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns    int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLife time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`

	// Migrations
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`

	// Redis session snapshots (optional)
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Session tokens
	JWTSecret string        `env:"JWT_SECRET" envDefault:"devaccesssecret"`
	AccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`

	// Password reset
	ResetTokenTTL      time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`
	ResetTokenDelivery string        `env:"RESET_TOKEN_DELIVERY" envDefault:"response"` // response, queue

	// RabbitMQ (optional; required when ResetTokenDelivery is "queue")
	RabbitMQURL   string `env:"RABBITMQ_URL"`
	RabbitMQQueue string `env:"RABBITMQ_AUTH_QUEUE" envDefault:"auth_events"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"` // comma-separated

	// HTTP
	HTTPLogEnabled bool `env:"HTTP_LOG_ENABLED" envDefault:"false"`
	TrustProxy     bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Load reads .env if present, then parses environment variables into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be positive"))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL must be positive"))
	}
	switch c.ResetTokenDelivery {
	case "response":
	case "queue":
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required when RESET_TOKEN_DELIVERY=queue"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RESET_TOKEN_DELIVERY %q", c.ResetTokenDelivery))
	}
	switch c.StorageDriver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.Env == "production" && c.JWTSecret == "devaccesssecret" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
