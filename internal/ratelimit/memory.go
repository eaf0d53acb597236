package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a mutex-guarded in-memory counter store. Suitable for
// single-instance deployments; multi-instance deployments share counters
// through RedisStore instead.
//
// Storage is unbounded between sweeps: Sweep (or the Run loop) drops expired
// windows so memory tracks active clients only.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Incr implements Store. The increment-and-compare runs under the store
// mutex, so two concurrent requests for one key can never both observe the
// same pre-increment count.
func (s *MemoryStore) Incr(_ context.Context, key string, windowLen time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowLen)}
		s.windows[key] = w
		return 1, w.resetAt, nil
	}

	w.count++
	return w.count, w.resetAt, nil
}

// Sweep removes windows that have already expired and returns how many were
// dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
			dropped++
		}
	}
	return dropped
}

// Len reports how many windows are currently tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Run sweeps expired windows on a fixed interval until ctx is canceled.
// The sweep holds the store mutex only briefly and never blocks admission
// decisions beyond that.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ratelimit_sweeper")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.InfoContext(ctx, "rate limit sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "rate limit sweeper stopped")
			return
		case <-ticker.C:
			if dropped := s.Sweep(); dropped > 0 {
				logger.DebugContext(ctx, "swept expired rate limit windows", "dropped", dropped)
			}
		}
	}
}
