// internal/pkg/ratelimit/memory.go
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval bounds memory to currently active keys rather than
// all-time keys.
const DefaultSweepInterval = 5 * time.Minute

// MemoryStore keeps fixed-window counters in a mutex-guarded map with a
// background sweep that evicts records whose window has passed.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore starts the sweeper at the given interval; zero or
// negative intervals fall back to DefaultSweepInterval.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	s := &MemoryStore{
		records: make(map[string]Record),
		done:    make(chan struct{}),
	}
	go s.sweep(sweepInterval)
	return s
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (Record, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || rec.Expired(now) {
		// Window rollover replaces the record; it is not an increment.
		rec = Record{Requests: 1, ResetTime: now.Add(window)}
	} else {
		rec.Requests++
	}
	s.records[key] = rec
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	delete(s.records, key)
	return ok, nil
}

func (s *MemoryStore) Entries(_ context.Context) (map[string]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Record, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out, nil
}

// Len reports the number of tracked keys, expired records included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, rec := range s.records {
				if rec.Expired(now) {
					delete(s.records, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
