package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// One INCR + PEXPIRE round trip, atomic so concurrent callers agree on
// the window start. Returns {count, pttl_ms}.
var redisFixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisFixedWindowLimiter is the shared-state Limiter used when the
// deployment runs more than one instance.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisFixedWindowLimiter{
		client: client,
		prefix: prefix,
	}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if l.client == nil {
		return false, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	if limit <= 0 {
		limit = 1
	}
	windowMS := window.Milliseconds()
	if windowMS <= 0 {
		windowMS = 1000
	}

	raw, err := redisFixedWindowScript.Run(
		ctx,
		l.client,
		[]string{fmt.Sprintf("%s:%s", l.prefix, key)},
		windowMS,
	).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected redis script response type")
	}
	count, err := parseRedisInt64(values[0])
	if err != nil {
		return false, 0, err
	}
	ttlMS, err := parseRedisInt64(values[1])
	if err != nil {
		return false, 0, err
	}
	if ttlMS <= 0 {
		ttlMS = windowMS
	}

	if count > int64(limit) {
		return false, time.Duration(ttlMS) * time.Millisecond, nil
	}
	return true, 0, nil
}

func parseRedisInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return 0, fmt.Errorf("unexpected string redis response: %s", n)
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}
