package ratelimit

import (
	"time"
)

// Config holds login throttle configuration.
type Config struct {
	// RedisAddr is the Redis server address (e.g. "localhost:6379").
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional).
	RedisPassword string

	// RedisDB is the Redis database number (default: 0).
	RedisDB int

	// Limit is the maximum number of attempts allowed per window.
	Limit int

	// Window is the sliding time window for the limit.
	Window time.Duration

	// KeyPrefix is the prefix for Redis keys (default: "loginlimit:").
	KeyPrefix string
}

// DefaultConfig returns a config with sensible defaults for login
// throttling: 10 attempts per client per minute.
func DefaultConfig() Config {
	return Config{
		RedisAddr: "localhost:6379",
		RedisDB:   0,
		Limit:     10,
		Window:    time.Minute,
		KeyPrefix: "loginlimit:",
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithRedisAddr sets the Redis server address.
func WithRedisAddr(addr string) Option {
	return func(c *Config) {
		c.RedisAddr = addr
	}
}

// WithRedisPassword sets the Redis authentication password.
func WithRedisPassword(password string) Option {
	return func(c *Config) {
		c.RedisPassword = password
	}
}

// WithRedisDB sets the Redis database number.
func WithRedisDB(db int) Option {
	return func(c *Config) {
		c.RedisDB = db
	}
}

// WithLimit sets the attempt limit and its window.
func WithLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.Limit = limit
		c.Window = window
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}
