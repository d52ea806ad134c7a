// internal/pkg/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Config is one endpoint-class admission policy.
type Config struct {
	Window      time.Duration
	MaxRequests int64
}

// Classes holds the per-endpoint-class policies. Higher-risk endpoints get
// tighter windows.
type Classes struct {
	Auth          Config
	PasswordReset Config
	API           Config
	Upload        Config
	Report        Config
}

// DefaultClasses mirrors the production defaults; every tuple is
// overridable through configuration.
func DefaultClasses() Classes {
	return Classes{
		Auth:          Config{Window: 15 * time.Minute, MaxRequests: 20},
		PasswordReset: Config{Window: 15 * time.Minute, MaxRequests: 3},
		API:           Config{Window: 15 * time.Minute, MaxRequests: 300},
		Upload:        Config{Window: time.Hour, MaxRequests: 50},
		Report:        Config{Window: time.Hour, MaxRequests: 30},
	}
}

// Result is the outcome of one admission check. The header values are
// attached regardless of allow/deny.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetTime time.Time
	TotalHits int64
}

// RetryAfter returns whole seconds until the window resets, minimum 1.
func (r Result) RetryAfter(now time.Time) int64 {
	secs := int64(r.ResetTime.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// KeyState is one tracked key for the admin surface.
type KeyState struct {
	Key       string    `json:"key"`
	Requests  int64     `json:"requests"`
	ResetTime time.Time `json:"reset_time"`
}

// Stats summarizes limiter state for operators.
type Stats struct {
	TotalKeys  int        `json:"total_keys"`
	ActiveKeys int        `json:"active_keys"`
	TopAbusers []KeyState `json:"top_abusers"`
}

// Limiter performs fixed-window admission control over an injected Store.
type Limiter struct {
	store Store
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check counts one hit against the key and reports whether it is admitted.
// The hit is counted even when denied; a rejected caller keeps burning its
// window.
func (l *Limiter) Check(ctx context.Context, key string, cfg Config) (Result, error) {
	rec, err := l.store.Incr(ctx, key, cfg.Window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check for %q: %w", key, err)
	}

	remaining := cfg.MaxRequests - rec.Requests
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   rec.Requests <= cfg.MaxRequests,
		Remaining: remaining,
		ResetTime: rec.ResetTime,
		TotalHits: rec.Requests,
	}, nil
}

// Reset clears a key for manual unblocking; reports whether it existed.
func (l *Limiter) Reset(ctx context.Context, key string) (bool, error) {
	return l.store.Delete(ctx, key)
}

// ListActive returns the keys whose window has not yet elapsed, busiest
// first.
func (l *Limiter) ListActive(ctx context.Context) ([]KeyState, error) {
	entries, err := l.store.Entries(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := make([]KeyState, 0, len(entries))
	for key, rec := range entries {
		if rec.Expired(now) {
			continue
		}
		active = append(active, KeyState{Key: key, Requests: rec.Requests, ResetTime: rec.ResetTime})
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Requests > active[j].Requests })

	return active, nil
}

// Stats reports totals plus the five busiest active keys.
func (l *Limiter) Stats(ctx context.Context) (*Stats, error) {
	entries, err := l.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	active, err := l.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	top := active
	if len(top) > 5 {
		top = top[:5]
	}

	return &Stats{
		TotalKeys:  len(entries),
		ActiveKeys: len(active),
		TopAbusers: top,
	}, nil
}
