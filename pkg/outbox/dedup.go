package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupTTL is how long a delivered notification id is remembered.
const DefaultDedupTTL = 48 * time.Hour

// Deduper remembers which notification ids have been delivered.
type Deduper interface {
	// Claim reports whether id is new and marks it delivered.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets id so a failed delivery can be retried.
	Release(ctx context.Context, id string) error
}

// redisClient is the part of go-redis the deduper uses.
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduper keeps notified_<id> keys in Redis.
type RedisDeduper struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisDeduper creates a RedisDeduper. A zero ttl uses DefaultDedupTTL.
func NewRedisDeduper(client redisClient, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func dedupKey(id string) string {
	return fmt.Sprintf("notified_%s", id)
}

func (d *RedisDeduper) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupKey(id), "true", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim notification %s: %w", id, err)
	}
	return ok, nil
}

func (d *RedisDeduper) Release(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, dedupKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to release notification %s: %w", id, err)
	}
	return nil
}

// ConnectRedis opens a client and checks the connection.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// MemoryDeduper is a process-local Deduper for single-instance runs.
type MemoryDeduper struct {
	seen sync.Map
}

func (d *MemoryDeduper) Claim(_ context.Context, id string) (bool, error) {
	_, loaded := d.seen.LoadOrStore(id, struct{}{})
	return !loaded, nil
}

func (d *MemoryDeduper) Release(_ context.Context, id string) error {
	d.seen.Delete(id)
	return nil
}
