package config

import "time"

// Config holds runtime settings for the field-sales CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - DatabaseDSN: path of the local SQLite database file.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerBaseURL       string
	DatabaseDSN         string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/api/v1"
	c.DatabaseDSN = "fieldsale.db"
	c.OnlineCheckInterval = 3 * time.Second
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
