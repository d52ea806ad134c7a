// internal/pkg/ratelimit/store.go
package ratelimit

import (
	"context"
	"time"
)

// Record is the fixed-window counter state for one key.
type Record struct {
	Requests  int64
	ResetTime time.Time
}

// Expired reports whether the window has passed.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ResetTime)
}

// Store is the injected counter backend. The in-memory store is correct
// for a single instance; multi-instance deployments configure the Redis
// store so every replica shares one window.
type Store interface {
	// Incr applies one hit to the key's current window. When the window
	// has elapsed the record is replaced with {1, now+window}, not
	// incremented; otherwise the counter grows by one. The increment for
	// a given key is atomic.
	Incr(ctx context.Context, key string, window time.Duration) (Record, error)
	// Get returns the record without counting a hit.
	Get(ctx context.Context, key string) (Record, bool, error)
	// Delete removes the key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Entries snapshots every tracked key for the admin surface.
	Entries(ctx context.Context) (map[string]Record, error)
	// Close releases background resources (the memory store's sweeper).
	Close() error
}
