package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the counter and arms the window expiry in one atomic
// step, returning the post-increment count and the remaining window in
// milliseconds. A key that lost its TTL (e.g. after a Redis restart) is
// re-armed rather than left to grow forever.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if count == 1 or ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore counts windows in Redis so every instance of the service sees
// the same ceilings.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed store with the default key prefix.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

// NewRedisStoreWithPrefix creates a Redis-backed store with a custom key
// prefix. Each endpoint class gets its own prefix so one client key never
// shares a window across classes.
func NewRedisStoreWithPrefix(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Incr implements Store using an atomic INCR+PEXPIRE script.
func (s *RedisStore) Incr(ctx context.Context, key string, windowLen time.Duration) (int64, time.Time, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.prefix + key}, windowLen.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit incr: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("ratelimit incr: unexpected reply of %d values", len(res))
	}

	count, ok := res[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("ratelimit incr: unexpected count type %T", res[0])
	}
	ttlMillis, ok := res[1].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("ratelimit incr: unexpected ttl type %T", res[1])
	}

	return count, time.Now().Add(time.Duration(ttlMillis) * time.Millisecond), nil
}
