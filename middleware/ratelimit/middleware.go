package ratelimit

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// New builds a Fiber middleware that throttles requests per client IP
// using a Redis-backed sliding window. When Redis is unreachable the
// middleware fails open: a broken limiter must not lock everyone out.
func New(opts ...Option) (fiber.Handler, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	limiter := NewLimiter(client, config.KeyPrefix)

	return func(c *fiber.Ctx) error {
		result, err := limiter.Allow(c.UserContext(), clientKey(c), config.Limit, config.Window)
		if err != nil {
			log.Printf("[ratelimit] Check failed, allowing request: %v", err)
			return c.Next()
		}

		if !result.Allowed {
			retryAfter := int(time.Until(result.RetryAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"detail": "Too many login attempts",
			})
		}

		return c.Next()
	}, nil
}

// clientKey identifies the caller for throttling purposes. Keyed by
// client IP and path so limits on different endpoints stay independent.
func clientKey(c *fiber.Ctx) string {
	return c.IP() + ":" + c.Path()
}
