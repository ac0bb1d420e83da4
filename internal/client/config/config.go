package config

import "time"

// Config holds runtime settings for the POS client CLI.
//
// Fields:
//   - BaseURL: scheme://host[:port] of the shop backend's REST API.
//   - DataDir: directory holding the local SQLite session database.
//   - RequestTimeout: per-call HTTP timeout, refresh calls included.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BaseURL        string
	DataDir        string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.DataDir = ".posclient"
	c.RequestTimeout = 30 * time.Second
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
