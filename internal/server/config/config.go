// Package config handles configuration for the server component: defaults,
// then .env / process environment, then a JSON file, then command-line flags.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the letterdesk server.
type Config struct {
	EndpointAddrGRPC             string
	EndpointAddrOps              string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	ResetTokenValidityDuration   time.Duration
	HashScheme                   string
	LogLevel                     string

	GenerationAPIKey   string
	GenerationEndpoint string
	GenerationModel    string
	GenerationTimeout  time.Duration
	GenerationRetries  int

	// TemplatesFile overrides the built-in letter template catalog when set.
	TemplatesFile string

	ReferralSubscriptionAmount float64
	SeedDemoData               bool

	// RedisAddr selects the redis-backed rate limiter; empty means in-memory.
	RedisAddr      string
	LoginRateLimit int
	ResetRateLimit int
	RateWindow     time.Duration

	// NATSURL selects the NATS notifier; empty means log-only delivery.
	NATSURL       string
	NotifySubject string

	OTLPEndpoint string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrOps = ":9090"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 24 * time.Hour
	c.ResetTokenValidityDuration = 15 * time.Minute
	c.HashScheme = "sha256"
	c.LogLevel = "info"
	c.GenerationEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	c.GenerationModel = "gemini-1.5-flash"
	c.GenerationTimeout = 60 * time.Second
	c.GenerationRetries = 2
	c.ReferralSubscriptionAmount = 50
	c.SeedDemoData = true
	c.LoginRateLimit = 10
	c.ResetRateLimit = 3
	c.RateWindow = time.Minute
	c.NotifySubject = "letterdesk.password_reset"
}

var (
	ErrMissingDatabaseDSN      = errors.New("DATABASE_DSN is not set")
	ErrMissingGenerationAPIKey = errors.New("GENERATION_API_KEY is not set")
)

// Validate reports settings whose absence is fatal at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, ErrMissingDatabaseDSN)
	}
	if c.GenerationAPIKey == "" {
		errs = append(errs, ErrMissingGenerationAPIKey)
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults and then overlaying
// environment, JSON file and command-line flags in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
