package config

import "time"

// Config holds runtime settings for the StillAlive CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the sync authority.
	ServerEndpointAddr string
	// AuthToken authenticates this device against the authority.
	AuthToken string
	// DatabasePath is the location of the local SQLite database.
	DatabasePath string
	// SyncInterval is the auto-sync period.
	SyncInterval time.Duration
	// OnlineCheckInterval is how often the client probes the authority while
	// offline.
	OnlineCheckInterval time.Duration
	// RequestTimeout bounds each HTTP request to the authority.
	RequestTimeout time.Duration
	// MaxRetries is the retry budget per request on network or server errors.
	MaxRetries int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "stillalive.db"
	c.SyncInterval = 5 * time.Minute
	c.OnlineCheckInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.MaxRetries = 3
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
