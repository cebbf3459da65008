// Package memory provides an in-memory event store (for testing/dev).
package memory

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/calendar-engine/calendar"
	"github.com/warp/calendar-engine/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory keeps events sorted by OccurredAt.
type Memory struct {
	mu     sync.RWMutex
	events []store.Event
}

var _ store.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

// Add inserts an event, assigning an ID and creation time when missing.
func (m *Memory) Add(_ context.Context, e store.Event) (store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e = m.insertLocked(e)
	return e, nil
}

// AddBatch inserts several events.
func (m *Memory) AddBatch(_ context.Context, events []store.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.insertLocked(e)
	}
	return nil
}

func (m *Memory) insertLocked(e store.Event) store.Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	// Binary search keeps the slice ordered without a full sort
	i := sort.Search(len(m.events), func(i int) bool {
		return m.events[i].OccurredAt.After(e.OccurredAt)
	})
	m.events = append(m.events, store.Event{})
	copy(m.events[i+1:], m.events[i:])
	m.events[i] = e
	return e
}

// Period spans the first event up to just after the last one.
func (m *Memory) Period(_ context.Context, q store.Query) (calendar.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var first, last time.Time
	found := false
	for _, e := range m.events {
		if !q.Match(e) {
			continue
		}
		if !found {
			first = e.OccurredAt
			found = true
		}
		last = e.OccurredAt
	}
	if !found {
		return calendar.Period{}, calendar.ErrNoPeriod
	}
	return calendar.NewPeriod(first, last.Add(time.Nanosecond))
}

// Filter narrows q to the window.
func (m *Memory) Filter(_ context.Context, q store.Query, p calendar.Period) (store.Query, error) {
	return q.Narrow(p), nil
}

// Count walks the series once per interval.
func (m *Memory) Count(_ context.Context, q store.Query, series iter.Seq2[int, calendar.Period]) (calendar.Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := calendar.Counts{}
	for page, p := range series {
		bucket := q.Narrow(p)
		n := 0
		for _, e := range m.events {
			if q.Match(e) && bucket.Match(e) {
				n++
			}
		}
		counts[page] = n
	}
	return counts, nil
}

// List returns a page of matching events, oldest first.
func (m *Memory) List(_ context.Context, q store.Query, limit, offset int) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.Event
	skipped := 0
	for _, e := range m.events {
		if !q.Match(e) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *Memory) Total(_ context.Context, q store.Query) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.events {
		if q.Match(e) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Categories(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, e := range m.events {
		if !seen[e.Category] {
			seen[e.Category] = true
			result = append(result, e.Category)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	return nil
}
