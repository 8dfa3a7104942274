package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/gym"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "gym:stats:"

// StatsCache stores gym dashboard stats in Redis with a fixed TTL.
type StatsCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{redis: rdb, ttl: ttl}
}

func statsKey(gymID string) string {
	return statsKeyPrefix + gymID
}

func (c *StatsCache) Get(ctx context.Context, gymID string) (*gym.Stats, error) {
	raw, err := c.redis.Get(ctx, statsKey(gymID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gym.ErrCacheMiss
		}
		return nil, err
	}

	var stats gym.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, gym.ErrCacheMiss
	}
	return &stats, nil
}

func (c *StatsCache) Set(ctx context.Context, gymID string, stats *gym.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, statsKey(gymID), string(data), c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, gymID string) error {
	return c.redis.Del(ctx, statsKey(gymID)).Err()
}
