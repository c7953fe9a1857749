// Package config loads runtime configuration for the Minbar CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string   base URL of the hosted REST backend
//	-k string   backend API key
//	-d string   data directory for the local database and session file
//	-i int      online status check interval (seconds)
//	-t int      backend request timeout (seconds)
//
// # JSON schema
//
// Intervals in JSON are integer seconds:
//
//	{
//	  "backend_url": "https://project.example.co",
//	  "api_key": "public-anon-key",
//	  "data_dir": "/var/lib/minbar",
//	  "online_check_interval": 3,
//	  "request_timeout": 30
//	}
//
// Primary API
//
//   - type Config                     — holds backend and local-state settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
