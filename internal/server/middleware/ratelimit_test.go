package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCounter struct {
	count int64
	err   error
	calls int
}

func (s *stubCounter) IncrementClientRateLimit(ctx context.Context, clientIP string) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.count++
	return s.count, nil
}

func newLimitedApp(counter *stubCounter, maxPerMinute int) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(RateLimit(counter, maxPerMinute, zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	counter := &stubCounter{}
	app := newLimitedApp(counter, 3)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 3, counter.calls)
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	counter := &stubCounter{count: 3}
	app := newLimitedApp(counter, 3)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitFailsOpenOnCounterError(t *testing.T) {
	counter := &stubCounter{err: errors.New("redis: connection refused")}
	app := newLimitedApp(counter, 3)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "counter failure must not block requests")
}
