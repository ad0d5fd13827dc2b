package rastertile

import (
	"github.com/spf13/viper"
)

// A Config holds the HTTP adapter's runtime configuration, sourced from
// environment variables (and an optional .env file), following the
// variable-per-field convention the rest of the corpus uses.
type Config struct {
	ListenAddress   string `mapstructure:"RASTERTILE_LISTEN_ADDRESS"`
	RasterPath      string `mapstructure:"RASTERTILE_PATH"`
	MaximumTiles    int    `mapstructure:"RASTERTILE_MAX_TILES"`
	PrefetchWorkers int    `mapstructure:"RASTERTILE_PREFETCH_WORKERS"`
	MaxUploadBytes  int64  `mapstructure:"RASTERTILE_MAX_UPLOAD_BYTES"`
}

// LoadConfig reads configuration from the environment (and ./.env, if
// present), applying defaults for anything unset.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("RASTERTILE_LISTEN_ADDRESS")
	viper.BindEnv("RASTERTILE_PATH")
	viper.BindEnv("RASTERTILE_MAX_TILES")
	viper.BindEnv("RASTERTILE_PREFETCH_WORKERS")
	viper.BindEnv("RASTERTILE_MAX_UPLOAD_BYTES")

	viper.SetDefault("RASTERTILE_LISTEN_ADDRESS", "0.0.0.0:3000")
	viper.SetDefault("RASTERTILE_MAX_TILES", 256)
	viper.SetDefault("RASTERTILE_PREFETCH_WORKERS", defaultPoolWorkers)
	viper.SetDefault("RASTERTILE_MAX_UPLOAD_BYTES", int64(100<<20))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, IOError(err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, IOError(err)
	}
	return cfg, nil
}
