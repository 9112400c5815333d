package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/bookmarksync/internal/flagx"
	"github.com/dmitrijs2005/bookmarksync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be spelled either as strings like "3s" or as integer nanoseconds; values
// are copied into the runtime Config afterwards.
type JsonConfig struct {
	DatabasePath   string         `json:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	RetryAttempts  int            `json:"retry_attempts"`
	RetryDelay     timex.Duration `json:"retry_delay"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. When no flag is given, nothing is loaded. Read or
// unmarshal errors panic; the caller may recover if it prefers degraded
// startup over failure.
func parseJson(cfg *Config) {
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

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout)
	}
	if jc.RetryAttempts != 0 {
		cfg.RetryAttempts = jc.RetryAttempts
	}
	if jc.RetryDelay != 0 {
		cfg.RetryDelay = time.Duration(jc.RetryDelay)
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
