/*
Package store defines the event collection the calendar paginates and the
interface its backends implement.

PURPOSE:
  Events are timestamped items (commits, posts, log entries...) grouped by
  category. A Query is the collection handle handed to the calendar: it
  names the category and, once filtered, the [from, to) window.

IMPLEMENTATIONS:
  store/memory: in-memory, for tests and demos
  store/sqlite: SQLite, batched bucket counts in SQL

SEE ALSO:
  - calendar/paginator.go: Source and Counter interfaces
*/
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warp/calendar-engine/calendar"
)

// Event is a single timestamped item.
type Event struct {
	ID         string
	Category   string
	Title      string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// NewEvent builds an event with a fresh ID.
func NewEvent(category, title string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Category:   category,
		Title:      title,
		OccurredAt: at,
	}
}

// Query is the collection handle. The zero Query is every event.
type Query struct {
	Category string           // empty matches all categories
	Window   *calendar.Period // nil until the calendar filters the query
}

// Narrow returns q restricted to [p.Start, p.End).
func (q Query) Narrow(p calendar.Period) Query {
	q.Window = &p
	return q
}

// Match reports whether e belongs to the collection described by q.
func (q Query) Match(e Event) bool {
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	if q.Window != nil && !q.Window.Contains(e.OccurredAt) {
		return false
	}
	return true
}

// Store is implemented by every backend.
type Store interface {
	calendar.Source[Query]
	calendar.Counter[Query]

	Add(ctx context.Context, e Event) (Event, error)
	AddBatch(ctx context.Context, events []Event) error
	List(ctx context.Context, q Query, limit, offset int) ([]Event, error)
	Total(ctx context.Context, q Query) (int, error)
	Categories(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
}
