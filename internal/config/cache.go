package config

import (
	"fmt"
	"time"
)

const defaultLeaderboardTtl = 5 * time.Second

// CacheConfig defines the optional redis cache in front of the leaderboard
// query. The whole section may be absent.
type CacheConfig struct {
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	Db             int           `mapstructure:"db"`
	LeaderboardTtl time.Duration `mapstructure:"leaderboard-ttl"`
}

func (cfg *CacheConfig) Validate() error {
	if cfg.Address == "" {
		return fmt.Errorf("cache address is required")
	}
	if cfg.Db < 0 {
		return fmt.Errorf("cache db must not be negative")
	}
	if cfg.LeaderboardTtl <= 0 {
		cfg.LeaderboardTtl = defaultLeaderboardTtl
	}

	return nil
}
