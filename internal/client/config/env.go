package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with DOKAN_* environment variables. When dotenv
// names an existing file it is loaded first; variables already present in
// the process environment win over the file. Values that do not parse are
// ignored.
func parseEnv(cfg *Config, dotenv string) {
	if dotenv != "" {
		_ = godotenv.Load(dotenv)
	}

	if v, ok := os.LookupEnv("DOKAN_API_URL"); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv("DOKAN_DB_PATH"); ok && v != "" {
		cfg.DatabasePath = v
	}
	if d, ok := envDuration("DOKAN_METADATA_TIMEOUT"); ok {
		cfg.MetadataTimeout = d
	}
	if d, ok := envDuration("DOKAN_TRANSFER_TIMEOUT"); ok {
		cfg.TransferTimeout = d
	}
	if v, ok := os.LookupEnv("DOKAN_PAGE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v, ok := os.LookupEnv("DOKAN_PROFILE_SOURCE"); ok && validProfileSource(v) {
		cfg.ProfileSource = v
	}
	if v, ok := os.LookupEnv("DOKAN_PERSIST_CART"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PersistCart = b
		}
	}
	if v, ok := os.LookupEnv("DOKAN_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
}

func envDuration(key string) (time.Duration, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func validProfileSource(s string) bool {
	return s == ProfileSourceProfile || s == ProfileSourceToken
}
