// Package config loads and persists gdtbench configuration.
package config

// Config is the workbench configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Server   ServerConfig   `mapstructure:"server" toml:"server"`
	Uploads  UploadConfig   `mapstructure:"uploads" toml:"uploads"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `mapstructure:"port" toml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	LogJSON        bool     `mapstructure:"log_json" toml:"log_json"`
}

// UploadConfig configures drawing uploads.
type UploadConfig struct {
	Dir           string `mapstructure:"dir" toml:"dir"`
	MaxBytes      int64  `mapstructure:"max_bytes" toml:"max_bytes"`
	RatePerMinute int    `mapstructure:"rate_per_minute" toml:"rate_per_minute"`
}

// Defaults.
const (
	DefaultServerPort    = 8470
	DefaultDatabasePath  = "gdtbench.db"
	DefaultUploadDir     = "uploads"
	DefaultMaxUploadMB   = 25
	DefaultUploadsPerMin = 20 // generous for local use
)
