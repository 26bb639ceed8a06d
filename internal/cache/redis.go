package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
)

const leaderboardKey = "leaderboard:top"

// RedisCache keeps a short-lived copy of the serialized leaderboard so hot
// page loads do not hit the database. It is strictly optional; a miss or an
// unreachable redis degrades to the underlying query.
type RedisCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func New(cfg *config.CacheConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Db,
	})
	return &RedisCache{
		client: client,
		cfg:    cfg,
	}
}

// GetLeaderboard returns the cached serialized leaderboard, or (nil, nil) on
// a cache miss.
func (c *RedisCache) GetLeaderboard(ctx context.Context) ([]byte, error) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// SetLeaderboard stores the serialized leaderboard under the configured TTL.
func (c *RedisCache) SetLeaderboard(ctx context.Context, data []byte) error {
	return c.client.Set(ctx, leaderboardKey, data, c.cfg.LeaderboardTtl).Err()
}

// Invalidate drops the cached leaderboard, e.g. after a rank change.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardKey).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
