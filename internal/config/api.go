package config

import (
	"fmt"
	"time"
)

const (
	defaultMaxLeaderboardPageSize = 100
	defaultWriteTimeout           = 10 * time.Second
	defaultReadTimeout            = 10 * time.Second
	defaultIdleTimeout            = 60 * time.Second
)

// ApiConfig defines the HTTP/WebSocket server surface.
type ApiConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MaxPageSize  int64         `mapstructure:"max-page-size"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`
}

func (cfg *ApiConfig) Validate() error {
	if cfg.Host == "" {
		return fmt.Errorf("api host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("api port must be between 1 and 65535")
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = defaultMaxLeaderboardPageSize
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}

	return nil
}

func (cfg *ApiConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
