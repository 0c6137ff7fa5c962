package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/letterdesk/internal/flagx"
	"github.com/dmitrijs2005/letterdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// both "1m" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrOps              string         `json:"endpoint_addr_ops"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	HashScheme                   string         `json:"hash_scheme"`
	LogLevel                     string         `json:"log_level"`
	GenerationEndpoint           string         `json:"generation_endpoint"`
	GenerationModel              string         `json:"generation_model"`
	GenerationTimeout            timex.Duration `json:"generation_timeout"`
	GenerationRetries            *int           `json:"generation_retries"`
	TemplatesFile                string         `json:"templates_file"`
	ReferralSubscriptionAmount   float64        `json:"referral_subscription_amount"`
	SeedDemoData                 *bool          `json:"seed_demo_data"`
	RedisAddr                    string         `json:"redis_addr"`
	LoginRateLimit               int            `json:"login_rate_limit"`
	ResetRateLimit               int            `json:"reset_rate_limit"`
	RateWindow                   timex.Duration `json:"rate_window"`
	NATSURL                      string         `json:"nats_url"`
	NotifySubject                string         `json:"notify_subject"`
}

// parseJson overlays values from the file named by -c / -config. Only keys
// present in the file change the config. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.EndpointAddrOps, c.EndpointAddrOps)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration.Duration)
	overlay(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration.Duration)
	overlay(&config.HashScheme, c.HashScheme)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.GenerationEndpoint, c.GenerationEndpoint)
	overlay(&config.GenerationModel, c.GenerationModel)
	overlay(&config.GenerationTimeout, c.GenerationTimeout.Duration)
	overlay(&config.TemplatesFile, c.TemplatesFile)
	overlay(&config.ReferralSubscriptionAmount, c.ReferralSubscriptionAmount)
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.LoginRateLimit, c.LoginRateLimit)
	overlay(&config.ResetRateLimit, c.ResetRateLimit)
	overlay(&config.RateWindow, c.RateWindow.Duration)
	overlay(&config.NATSURL, c.NATSURL)
	overlay(&config.NotifySubject, c.NotifySubject)
	if c.GenerationRetries != nil {
		config.GenerationRetries = *c.GenerationRetries
	}
	if c.SeedDemoData != nil {
		config.SeedDemoData = *c.SeedDemoData
	}
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
