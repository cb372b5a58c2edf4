package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-t", "-T", "-p", "-s", "-k", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the Remote API
//	-d string   path of the local SQLite file
//	-t int      metadata call timeout (seconds)
//	-T int      upload/download timeout (seconds)
//	-p int      default page size
//	-s string   profile source: profile or token
//	-k bool     persist the cart between runs
//	-l string   log level
//
// Only the flags above are looked at, so -c/-config and REPL arguments pass
// through untouched. Invalid values panic.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	metadataTimeout := fs.Int("t", int(cfg.MetadataTimeout.Seconds()), "metadata call timeout (in seconds)")
	transferTimeout := fs.Int("T", int(cfg.TransferTimeout.Seconds()), "transfer timeout (in seconds)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "default page size")
	fs.StringVar(&cfg.ProfileSource, "s", cfg.ProfileSource, "profile source (profile|token)")
	fs.BoolVar(&cfg.PersistCart, "k", cfg.PersistCart, "persist cart between runs")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	if !validProfileSource(cfg.ProfileSource) {
		panic("unknown profile source: " + cfg.ProfileSource)
	}
	if cfg.PageSize < 1 {
		panic("page size must be positive")
	}

	cfg.MetadataTimeout = time.Duration(*metadataTimeout) * time.Second
	cfg.TransferTimeout = time.Duration(*transferTimeout) * time.Second
}
