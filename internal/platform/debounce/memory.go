package debounce

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard provides an in-process implementation suitable for single
// instance deployments, testing, and local development.
type MemoryGuard struct {
	mu       sync.Mutex
	attempts map[string]time.Time
}

// NewMemoryGuard constructs an empty memory-backed guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{attempts: make(map[string]time.Time)}
}

// Reserve implements the Guard interface.
func (g *MemoryGuard) Reserve(_ context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	now = now.UTC()
	if window <= 0 {
		window = DefaultWindow
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.attempts[key]; ok && now.Sub(last) < window {
		return false, nil
	}
	g.attempts[key] = now
	return true, nil
}

// Release implements the Guard interface.
func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.attempts, key)
	return nil
}

// Prune implements the Guard interface.
func (g *MemoryGuard) Prune(_ context.Context, now time.Time, maxAge time.Duration) (int, error) {
	now = now.UTC()
	if maxAge <= 0 {
		maxAge = 2 * DefaultWindow
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for key, recorded := range g.attempts {
		if now.Sub(recorded) < maxAge {
			continue
		}
		delete(g.attempts, key)
		removed++
	}
	return removed, nil
}

var _ Guard = (*MemoryGuard)(nil)
