// Package quota enforces the per-client fixed-window request quota.
// Fixed window, not sliding: a client timing requests around the window
// edge can reach near-2x throughput. That artifact is an accepted
// tradeoff of the policy, and callers must not assume sliding-window
// semantics.
package quota

import (
	"sync"
	"time"
)

// Record: usage record for one client identity.
type Record struct {
	Count           int
	WindowStartedAt time.Time
}

// Decision: outcome of one admission check.
type Decision struct {
	Allowed    bool
	Count      int
	Remaining  int
	RetryAfter time.Duration
}

// Store: keyed record storage behind the tracker. External callers only
// see the tracker; the store exists so tests can inject a fresh one.
type Store interface {
	Get(id string) (Record, bool)
	Put(id string, record Record)
}

// MemoryStore: map-backed store. Entries live for the process lifetime;
// there is no eviction and no persistence across restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore: creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	return record, ok
}

func (s *MemoryStore) Put(id string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = record
}

// Len: number of tracked identities.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Tracker: admits or denies requests per identity within a fixed window.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewTracker: builds a tracker over the given store.
func NewTracker(store Store, limit int, window time.Duration) *Tracker {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Tracker{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock: swaps the time source, for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Admit: runs one admission check. The read-modify-write of the record
// happens under the tracker mutex, so concurrent requests for the same
// identity cannot interleave.
func (t *Tracker) Admit(id string) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	record, ok := t.store.Get(id)
	if !ok || now.Sub(record.WindowStartedAt) > t.window {
		record = Record{Count: 1, WindowStartedAt: now}
		t.store.Put(id, record)
		return Decision{Allowed: true, Count: 1, Remaining: t.limit - 1}
	}

	if record.Count < t.limit {
		record.Count++
		t.store.Put(id, record)
		return Decision{Allowed: true, Count: record.Count, Remaining: t.limit - record.Count}
	}

	// Denied; the record stays untouched so the count never passes the cap.
	return Decision{
		Allowed:    false,
		Count:      record.Count,
		Remaining:  0,
		RetryAfter: record.WindowStartedAt.Add(t.window).Sub(now),
	}
}

// Limit: configured maximum admissions per window.
func (t *Tracker) Limit() int {
	return t.limit
}

// Window: configured window span.
func (t *Tracker) Window() time.Duration {
	return t.window
}
