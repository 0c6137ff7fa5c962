// Package config loads runtime configuration for the letterdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags bound by the CLI, which override earlier values.
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "letterdesk.db",
//	  "restore_policy": "verify",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "log_level": "warn"
//	}
package config
