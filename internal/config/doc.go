// Package config loads karaflog's settings from a TOML file.
//
// # Discovery
//
// Load resolves the path in this order:
//
//  1. An explicit path (the --config flag)
//  2. ~/.config/karaflog/config.toml
//
// A missing file is not an error: Default() is returned. A file that exists
// but cannot be read or parsed is an error, so typos do not silently fall
// back to defaults.
//
// # TOML Format
//
//	poll_interval_ms = 1000   # how often each file is checked
//	flush_delay_ms = 300      # idle time before the last record is shown
//	retry_base_ms = 1000      # first retry delay for an unreadable file
//	retry_max_ms = 30000      # retry delay cap
//	level = "warn"            # initial level threshold
//	follow = true             # start at the bottom and stay there
//	wrap = false              # wrap long lines
//	log_file = "~/.cache/karaflog/karaflog.log"
//	log_level = "info"
//
// Every field is optional. Durations that are missing, zero or negative keep
// their default. Paths get ~ expansion.
//
// Command line flags override the file; see cmd/karaflog.
package config
