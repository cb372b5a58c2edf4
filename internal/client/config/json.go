package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dokanload/internal/flagx"
	"github.com/dmitrijs2005/dokanload/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-value fields that are absent from the file leave Config untouched.
type JsonConfig struct {
	APIBaseURL      string          `json:"api_base_url"`
	DatabasePath    string          `json:"database_path"`
	MetadataTimeout *timex.Duration `json:"metadata_timeout"`
	TransferTimeout *timex.Duration `json:"transfer_timeout"`
	PageSize        int             `json:"page_size"`
	ProfileSource   string          `json:"profile_source"`
	PersistCart     *bool           `json:"persist_cart"`
	LogLevel        string          `json:"log_level"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without either flag it does nothing. Read or unmarshal errors
// panic, as do unknown profile sources.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.MetadataTimeout != nil {
		cfg.MetadataTimeout = jc.MetadataTimeout.Duration
	}
	if jc.TransferTimeout != nil {
		cfg.TransferTimeout = jc.TransferTimeout.Duration
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.ProfileSource != "" {
		if !validProfileSource(jc.ProfileSource) {
			panic("unknown profile_source: " + jc.ProfileSource)
		}
		cfg.ProfileSource = jc.ProfileSource
	}
	if jc.PersistCart != nil {
		cfg.PersistCart = *jc.PersistCart
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
