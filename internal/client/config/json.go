package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/minbarcms/minbar/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals are
// expressed as integer seconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	BackendURL          string `json:"backend_url"`
	APIKey              string `json:"api_key"`
	DataDir             string `json:"data_dir"`
	OnlineCheckInterval int    `json:"online_check_interval"`
	RequestTimeout      int    `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.BackendURL = jc.BackendURL
	cfg.APIKey = jc.APIKey
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout) * time.Second
}
