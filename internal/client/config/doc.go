// Package config loads runtime configuration for the storefront CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. DOKAN_* environment variables, optionally from a .env file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Timeouts use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://shop.example/api",
//	  "database_path": "storefront.db",
//	  "metadata_timeout": "10s",
//	  "transfer_timeout": "30s",
//	  "page_size": 12,
//	  "profile_source": "profile",
//	  "persist_cart": true,
//	  "log_level": "debug"
//	}
package config
