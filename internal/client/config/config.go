package config

import (
	"os"
	"time"
)

// ProfileSource names where the Session Manager takes user identity from.
const (
	ProfileSourceProfile = "profile"
	ProfileSourceToken   = "token"
)

// Config holds runtime settings for the storefront client.
//
// Fields:
//   - APIBaseURL: base URL of the Remote API, e.g. "https://shop.example/api".
//   - DatabasePath: SQLite file that keeps the bearer token (and optionally the cart).
//   - MetadataTimeout: per-call timeout for JSON reads and writes.
//   - TransferTimeout: per-call timeout for file upload/download.
//   - PageSize: default page size for asset listings.
//   - ProfileSource: "profile" fetches /User/profile, "token" decodes claims only.
//   - PersistCart: keep the cart across restarts.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL      string
	DatabasePath    string
	MetadataTimeout time.Duration
	TransferTimeout time.Duration
	PageSize        int
	ProfileSource   string
	PersistCart     bool
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.DatabasePath = "storefront.db"
	c.MetadataTimeout = 10 * time.Second
	c.TransferTimeout = 30 * time.Second
	c.PageSize = 10
	c.ProfileSource = ProfileSourceProfile
	c.PersistCart = false
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file), JSON (if present) and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, ".env")
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
