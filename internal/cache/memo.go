// Package cache provides a per-report memo for provider queries so identical
// (stream, date) lookups triggered by overlapping slots are issued once.
package cache

import (
	"sync"

	"aircheck/internal/domain"
)

// entry holds one query's outcome; Once guards the single fetch
type entry struct {
	once   sync.Once
	events []domain.DetectionEvent
	err    error
}

// QueryMemo deduplicates detection-provider queries for the lifetime of one
// report build. It is safe for concurrent use; concurrent callers of the same
// key share a single fetch and its result.
type QueryMemo struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewQueryMemo creates an empty QueryMemo
func NewQueryMemo() *QueryMemo {
	return &QueryMemo{
		entries: make(map[string]*entry),
	}
}

// Do returns the memoized result for key, invoking fetch exactly once per key
// across all callers. Errors are memoized too: a failed query is not retried
// within the same report.
func (m *QueryMemo) Do(key string, fetch func() ([]domain.DetectionEvent, error)) ([]domain.DetectionEvent, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.once.Do(func() {
		e.events, e.err = fetch()
	})
	return e.events, e.err
}

// Len returns the number of distinct keys queried so far
func (m *QueryMemo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
