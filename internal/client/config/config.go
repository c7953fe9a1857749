package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Minbar CLI.
//
// Fields:
//   - BackendURL: base URL of the hosted REST backend.
//   - APIKey: project API key sent with every backend request.
//   - DataDir: directory for the local database and session file.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - RequestTimeout: per-request timeout for backend calls.
//
// Units: OnlineCheckInterval and RequestTimeout are time.Durations
// (e.g., 3*time.Second).
type Config struct {
	BackendURL          string
	APIKey              string
	DataDir             string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8000"
	c.APIKey = ""
	c.DataDir = defaultDataDir()
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".minbar"
	}
	return filepath.Join(base, "minbar")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
