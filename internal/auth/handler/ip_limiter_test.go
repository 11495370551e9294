package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_ExhaustedBucketIsRejected(t *testing.T) {
	rl := NewIPRateLimiter(1, 2)
	defer rl.Stop()

	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(false)})
	app.Get("/limited", rl.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// The burst allows the first two requests straight through.
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestIPRateLimiter_PerAddressBuckets(t *testing.T) {
	rl := NewIPRateLimiter(60, 20)
	defer rl.Stop()

	a := rl.get("198.51.100.1")
	b := rl.get("198.51.100.2")

	assert.NotSame(t, a, b)
	assert.Same(t, a, rl.get("198.51.100.1"))
}

func TestIPRateLimiter_CleanupDropsIdleEntries(t *testing.T) {
	rl := NewIPRateLimiter(60, 20)
	defer rl.Stop()

	rl.get("198.51.100.1")
	rl.get("198.51.100.2")

	rl.mu.Lock()
	rl.limiters["198.51.100.1"].lastAccess = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.limiters, "198.51.100.1")
	assert.Contains(t, rl.limiters, "198.51.100.2")
}
