package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter implements sliding-window rate limiting over Redis sorted
// sets. The window is evaluated atomically in a Lua script so that
// concurrent attempts from the same client never overshoot the limit.
type Limiter struct {
	client    *redis.Client
	keyPrefix string
}

// NewLimiter creates a new Limiter on the given Redis client.
func NewLimiter(client *redis.Client, keyPrefix string) *Limiter {
	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	RetryAt   time.Time
}

var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		local seq = redis.call('INCR', key .. ':seq')
		redis.call('ZADD', key, now, now .. ':' .. seq)
		local ttl = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, ttl)
		redis.call('EXPIRE', key .. ':seq', ttl)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_at = 0
	if oldest and #oldest >= 2 then
		retry_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, retry_at}
`)

// Allow records an attempt for key and reports whether it fits inside
// the limit for the window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()

	values, err := slidingWindow.Run(ctx, l.client,
		[]string{l.keyPrefix + key},
		now.UnixMilli(),
		now.Add(-window).UnixMilli(),
		limit,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis script error: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected redis response length: %d", len(values))
	}

	retryAt := now.Add(window)
	if values[2] > 0 {
		retryAt = time.UnixMilli(values[2])
	}

	return &Result{
		Allowed:   values[0] == 1,
		Remaining: int(values[1]),
		RetryAt:   retryAt,
	}, nil
}

// Reset clears recorded attempts for a key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.keyPrefix+key, l.keyPrefix+key+":seq").Err()
}
