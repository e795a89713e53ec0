package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/calibrant/gdtbench/errors"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.log_json", false)

	v.SetDefault("uploads.dir", DefaultUploadDir)
	v.SetDefault("uploads.max_bytes", int64(DefaultMaxUploadMB)*1024*1024)
	v.SetDefault("uploads.rate_per_minute", DefaultUploadsPerMin)
}

// Load reads configuration from defaults, an optional gdtbench.toml in the
// working directory, and GDTBENCH_* environment variables, in increasing
// precedence.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("gdtbench")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GDTBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	return LoadWithViper(v)
}

// LoadFromFile loads configuration from a specific toml file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals configuration from a prepared Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
