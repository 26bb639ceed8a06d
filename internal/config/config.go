package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Db      DbConfig      `mapstructure:"db"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Api     ApiConfig     `mapstructure:"api"`
	Cache   *CacheConfig  `mapstructure:"cache"`
	Poller  PollerConfig  `mapstructure:"poller"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Queue.Validate(); err != nil {
		return err
	}
	if err := cfg.Api.Validate(); err != nil {
		return err
	}
	// cache is optional; the leaderboard query falls back to the rank
	// index when no redis is configured
	if cfg.Cache != nil {
		if err := cfg.Cache.Validate(); err != nil {
			return err
		}
	}
	if err := cfg.Poller.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	return nil
}

// New returns a fully parsed and validated Config object from the given
// config file path. Environment variables override file values, with dots
// and dashes mapped to underscores.
func New(cfgFile string) (*Config, error) {
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
