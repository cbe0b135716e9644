package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Counter bumps a per-client request counter and returns the new value.
// Satisfied by the redis cache.
type Counter interface {
	IncrementClientRateLimit(ctx context.Context, clientIP string) (int64, error)
}

// RateLimit bounds requests per client IP per minute using a redis counter.
// Fails open: if the counter cannot be read, the request proceeds.
func RateLimit(cache Counter, maxPerMinute int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		count, err := cache.IncrementClientRateLimit(ctx, c.IP())
		if err != nil {
			logger.Error("failed to check rate limit",
				zap.String("client_ip", c.IP()),
				zap.Error(err),
			)
			return c.Next()
		}

		if count > int64(maxPerMinute) {
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", c.IP()),
				zap.Int64("count", count),
			)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded, try again in a minute",
			})
		}

		return c.Next()
	}
}
