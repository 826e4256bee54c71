package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(limiter *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Use(limiter.Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestMiddlewareAllowsUnderLimit(t *testing.T) {
	app := newTestApp(New(Config{MaxRequestsPerMinute: 3}))

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	app := newTestApp(New(Config{MaxRequestsPerMinute: 2}))

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestMiddlewareKeysByUserHeader(t *testing.T) {
	app := newTestApp(New(Config{MaxRequestsPerMinute: 1}))

	first := httptest.NewRequest("GET", "/", nil)
	first.Header.Set("X-User-ID", "u-1")
	resp, err := app.Test(first)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Same user is now over the limit.
	again := httptest.NewRequest("GET", "/", nil)
	again.Header.Set("X-User-ID", "u-1")
	resp, err = app.Test(again)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// A different user has its own counter.
	other := httptest.NewRequest("GET", "/", nil)
	other.Header.Set("X-User-ID", "u-2")
	resp, err = app.Test(other)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func TestMiddlewareFailsOpenOnStoreError(t *testing.T) {
	app := newTestApp(New(Config{MaxRequestsPerMinute: 1, Store: failingStore{}}))

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestMemoryStoreCountsWithinWindow(t *testing.T) {
	store := NewMemoryStore()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Incr(context.Background(), "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestMemoryStoreResetsAfterWindow(t *testing.T) {
	store := NewMemoryStore()

	count, err := store.Incr(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	time.Sleep(20 * time.Millisecond)

	count, err = store.Incr(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "expired window starts a fresh count")
}

func TestMemoryStoreIsolatesKeys(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Incr(context.Background(), "a", time.Minute)
	require.NoError(t, err)

	count, err := store.Incr(context.Background(), "b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
