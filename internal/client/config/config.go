package config

import "time"

// Config holds runtime settings for the PhishGuard client.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - DatabasePath: SQLite DSN of the local key-material/lockout database.
//   - KDFIterations: PBKDF2 iteration count for key derivation.
//   - RemotePageSize: page size when listing encrypted analyses.
//   - LockoutRefreshThrottle: minimum interval between remote
//     unlock-status reads.
//   - LockoutCacheTTL: how long a cached not-locked answer stays fresh.
type Config struct {
	APIBaseURL             string
	DatabasePath           string
	KDFIterations          int
	RemotePageSize         int
	LockoutRefreshThrottle time.Duration
	LockoutCacheTTL        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "phishguard.db"
	c.KDFIterations = 100000
	c.RemotePageSize = 20
	c.LockoutRefreshThrottle = time.Second
	c.LockoutCacheTTL = 30 * time.Second
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
