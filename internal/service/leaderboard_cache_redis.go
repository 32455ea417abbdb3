package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

// RedisLeaderboardCache stores the serialized leaderboard under a
// single key. A nil client degrades every operation to a no-op so the
// service works without redis in development.
type RedisLeaderboardCache struct {
	client redis.UniversalClient
	key    string
}

func NewRedisLeaderboardCache(client redis.UniversalClient, prefix string) *RedisLeaderboardCache {
	if prefix == "" {
		prefix = "leaderboard"
	}
	return &RedisLeaderboardCache{client: client, key: prefix + ":top"}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// a corrupt cache entry reads as a miss and gets overwritten
		return nil, false, nil
	}
	return entries, true, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, entries []domain.LeaderboardEntry, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, ttl).Err()
}

func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key).Err()
}
