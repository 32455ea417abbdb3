package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

func newRedisCache(t *testing.T) (*RedisLeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLeaderboardCache(client, "kgts:leaderboard"), mr
}

func TestRedisLeaderboardCacheRoundTrip(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	if _, hit, err := cache.Get(ctx); err != nil || hit {
		t.Fatalf("empty cache must miss cleanly, hit=%v err=%v", hit, err)
	}

	entries := []domain.LeaderboardEntry{
		{Handle: "alice", Name: "Alice A", Score: 50},
		{Handle: "bob", Name: "Bob B", Score: 35},
	}
	if err := cache.Set(ctx, entries, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := cache.Get(ctx)
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if len(got) != 2 || got[0].Handle != "alice" || got[1].Score != 35 {
		t.Fatalf("round trip mangled entries: %+v", got)
	}
}

func TestRedisLeaderboardCacheExpiry(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, []domain.LeaderboardEntry{{Handle: "alice"}}, 30*time.Second); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(31 * time.Second)

	if _, hit, err := cache.Get(ctx); err != nil || hit {
		t.Fatalf("expired entry must miss, hit=%v err=%v", hit, err)
	}
}

func TestRedisLeaderboardCacheInvalidate(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, []domain.LeaderboardEntry{{Handle: "alice"}}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, hit, _ := cache.Get(ctx); hit {
		t.Fatal("invalidated entry must miss")
	}
}

func TestRedisLeaderboardCacheCorruptValueReadsAsMiss(t *testing.T) {
	cache, mr := newRedisCache(t)
	mr.Set("kgts:leaderboard:top", "{not json")

	if _, hit, err := cache.Get(context.Background()); err != nil || hit {
		t.Fatalf("corrupt value must miss without error, hit=%v err=%v", hit, err)
	}
}

func TestNilClientCacheIsNoop(t *testing.T) {
	cache := NewRedisLeaderboardCache(nil, "")
	ctx := context.Background()

	if err := cache.Set(ctx, []domain.LeaderboardEntry{{Handle: "alice"}}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := cache.Get(ctx); err != nil || hit {
		t.Fatalf("nil client must always miss, hit=%v err=%v", hit, err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
}
