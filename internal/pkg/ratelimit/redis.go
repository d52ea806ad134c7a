// internal/pkg/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares one fixed window across instances using INCR with an
// expiry set on the first hit of each window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (Record, error) {
	rkey := s.prefix + key

	count, err := s.client.Incr(ctx, rkey).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to increment rate limit key: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, rkey, window).Err(); err != nil {
			return Record{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		return Record{Requests: 1, ResetTime: time.Now().Add(window)}, nil
	}

	ttl, err := s.client.PTTL(ctx, rkey).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// Expiry was lost (e.g. key created without one); restore it.
		if err := s.client.PExpire(ctx, rkey, window).Err(); err != nil {
			return Record{}, fmt.Errorf("failed to restore rate limit window: %w", err)
		}
		ttl = window
	}

	return Record{Requests: count, ResetTime: time.Now().Add(ttl)}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	rkey := s.prefix + key

	val, err := s.client.Get(ctx, rkey).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read rate limit key: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return Record{}, false, fmt.Errorf("unexpected rate limit counter %q: %w", val, err)
	}

	ttl, err := s.client.PTTL(ctx, rkey).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}

	return Record{Requests: count, ResetTime: time.Now().Add(ttl)}, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete rate limit key: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Entries(ctx context.Context) (map[string]Record, error) {
	out := make(map[string]Record)

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		rkey := iter.Val()
		key := strings.TrimPrefix(rkey, s.prefix)
		rec, ok, err := s.Get(ctx, key)
		if err != nil || !ok {
			continue // key expired between SCAN and GET
		}
		out[key] = rec
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rate limit keys: %w", err)
	}

	return out, nil
}

// Close is a no-op; the redis client is owned by the caller.
func (s *RedisStore) Close() error { return nil }
