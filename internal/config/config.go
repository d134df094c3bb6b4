// Package config loads colorsync settings from environment variables with
// defaults and validates them before any command runs.
package config

import "time"

// Config holds all colorsync configuration.
// Every setting can be given as an environment variable; command-line flags
// override the loaded values.
type Config struct {
	Store    StoreConfig
	Exchange ExchangeConfig
	Sync     SyncConfig
	Watch    WatchConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// StoreConfig holds record store settings.
type StoreConfig struct {
	// Path is the SQLite database file (default: colorsync.db)
	Path string `env:"COLORSYNC_DB" envAlt:"COLORSYNC_DATABASE" default:"colorsync.db"`

	// RetryDelay is the pause before retrying a busy database (default: 250ms)
	RetryDelay time.Duration `env:"COLORSYNC_DB_RETRY_DELAY" default:"250ms"`
}

// ExchangeConfig holds exchange document settings.
type ExchangeConfig struct {
	// Sheet is the sheet to import from or export to (default: first sheet)
	Sheet string `env:"COLORSYNC_SHEET"`

	// Remap places columns by header name when row 8 is out of order (default: false)
	Remap bool `env:"COLORSYNC_REMAP" default:"false"`
}

// SyncConfig holds coordinator settings.
type SyncConfig struct {
	// ClearEmptyCells makes save clear stored values of empty cells (default: false)
	ClearEmptyCells bool `env:"COLORSYNC_CLEAR_EMPTY_CELLS" default:"false"`

	DefaultMarker string `env:"COLORSYNC_DEFAULT_MARKER" default:"."`
	DefaultColor  string `env:"COLORSYNC_DEFAULT_COLOR" default:"blue"`
}

// WatchConfig holds document watcher settings.
type WatchConfig struct {
	// Debounce is the quiet period before a changed document is imported (default: 500ms)
	Debounce time.Duration `env:"COLORSYNC_WATCH_DEBOUNCE" default:"500ms"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	// Textfile receives Prometheus metrics after each command when set
	Textfile string `env:"COLORSYNC_METRICS_FILE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"COLORSYNC_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"COLORSYNC_LOG_FORMAT" default:"text"`
}
