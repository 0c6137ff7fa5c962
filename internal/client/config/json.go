package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/flagx"
	"github.com/dmitrijs2005/letterdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path"`
	RestorePolicy       string         `json:"restore_policy"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the non-zero values of the JSON file given by
// -c or -config. Without the flag nothing changes.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.RestorePolicy, jc.RestorePolicy)
	overlay(&cfg.RequestTimeout, time.Duration(jc.RequestTimeout.Duration))
	overlay(&cfg.OnlineCheckInterval, time.Duration(jc.OnlineCheckInterval.Duration))
	overlay(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
