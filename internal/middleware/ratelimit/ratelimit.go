package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/metrics"
	"github.com/educhat/backend/pkg/utils"
)

// CounterStore counts requests per key within a fixed window. The Redis
// implementation shares counters across replicas; the in-memory one is the
// single-process fallback.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Config struct {
	MaxRequestsPerMinute int
	WindowDuration       time.Duration
	Store                CounterStore
	Logger               *zap.Logger
}

type RateLimiter struct {
	store  CounterStore
	max    int64
	window time.Duration
	logger *zap.Logger
}

func New(cfg Config) *RateLimiter {
	if cfg.MaxRequestsPerMinute == 0 {
		cfg.MaxRequestsPerMinute = 60
	}
	if cfg.WindowDuration == 0 {
		cfg.WindowDuration = time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  cfg.Store,
		max:    int64(cfg.MaxRequestsPerMinute),
		window: cfg.WindowDuration,
		logger: cfg.Logger,
	}
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()

		userID := c.Get("X-User-ID")
		if userID != "" {
			key = userID
		}

		count, err := rl.store.Incr(c.Context(), utils.HashString(key), rl.window)
		if err != nil {
			// Fail open: a broken counter store should not take chat down.
			rl.logger.Warn("Rate limit counter unavailable",
				zap.Error(err),
			)
			return c.Next()
		}

		if count > rl.max {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			metrics.RateLimitRejections.Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}

type memoryCounter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a process-local fixed-window counter store.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*memoryCounter)}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	counter, ok := s.counters[key]
	if !ok || now.After(counter.resetAt) {
		counter = &memoryCounter{resetAt: now.Add(window)}
		s.counters[key] = counter

		// Opportunistic cleanup of expired counters.
		for k, c := range s.counters {
			if now.After(c.resetAt) {
				delete(s.counters, k)
			}
		}
	}

	counter.count++
	return counter.count, nil
}
