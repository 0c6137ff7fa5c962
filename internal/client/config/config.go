package config

import "time"

// Restore policies for a persisted session.
const (
	// RestoreVerify asks the server to confirm the cached session.
	RestoreVerify = "verify"
	// RestoreTrust accepts the cached session without contacting the server.
	RestoreTrust = "trust"
)

// Config holds runtime settings for the letterdesk CLI.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	RestorePolicy       string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "letterdesk.db"
	c.RestorePolicy = RestoreVerify
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults and then the JSON file named by -c/-config in
// args, if any. Command-line flags are bound on top by the CLI.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
