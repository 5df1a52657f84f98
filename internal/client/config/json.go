package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/phishguard/internal/flagx"
	"github.com/dmitrijs2005/phishguard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	APIBaseURL             string         `json:"api_base_url"`
	DatabasePath           string         `json:"database_path"`
	KDFIterations          int            `json:"kdf_iterations"`
	RemotePageSize         int            `json:"remote_page_size"`
	LockoutRefreshThrottle timex.Duration `json:"lockout_refresh_throttle"`
	LockoutCacheTTL        timex.Duration `json:"lockout_cache_ttl"`
}

// parseJson overlays Config with values loaded from a JSON file whose path is
// given via -c or -config. Zero values in the file are ignored so partial
// configs only override what they set. Read or unmarshal errors panic
// (callers recover if desired); a missing flag simply skips this stage.
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.KDFIterations > 0 {
		cfg.KDFIterations = jc.KDFIterations
	}
	if jc.RemotePageSize > 0 {
		cfg.RemotePageSize = jc.RemotePageSize
	}
	if jc.LockoutRefreshThrottle.Duration > 0 {
		cfg.LockoutRefreshThrottle = jc.LockoutRefreshThrottle.Duration
	}
	if jc.LockoutCacheTTL.Duration > 0 {
		cfg.LockoutCacheTTL = jc.LockoutCacheTTL.Duration
	}
}
