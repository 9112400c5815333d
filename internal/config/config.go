package config

import "time"

// Config holds runtime settings for the bookmark sync engine.
//
// Fields:
//   - DatabasePath: path (or DSN) of the local sqlite bookmark store.
//   - RequestTimeout: per-request timeout for annotation server calls.
//   - RetryAttempts: attempt budget of the retrying command queue.
//   - RetryDelay: fixed delay between retry attempts.
//   - LogLevel: debug | info | warn | error.
type Config struct {
	DatabasePath   string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "bookmarks.db"
	c.RequestTimeout = 30 * time.Second
	c.RetryAttempts = 3
	c.RetryDelay = 3 * time.Second
	c.LogLevel = "info"
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
