/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Persists events and answers the three calendar questions in SQL:
  - Period: MIN/MAX of occurred_at for the query
  - Filter: narrows the query window (evaluated lazily by List/Total)
  - Count:  one grouped query per chunk of buckets, instead of one query
            per page

TIME ENCODING:
  occurred_at is stored as fixed-width UTC text (timeLayout) so that string
  comparison in SQL orders like time comparison. Bucket bounds are converted
  to UTC the same way before they are bound.

KEY TABLES:
  events: id, category, title, occurred_at, created_at

INDEXES:
  - idx_events_occurred_at:          period and bucket scans (hot path)
  - idx_events_category_occurred_at: per-category scans

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, like the in-memory store.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer.

USAGE:
  s, err := sqlite.New("./data/events.db")
  if err != nil {
      log.Fatal(err)
  }
  defer s.Close()

  p, _ := calendar.NewPaginator[store.Query](cfg, s, s)

SEE ALSO:
  - store/event.go: Event, Query and Store interface
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/calendar-engine/calendar"
	"github.com/warp/calendar-engine/store"
)

// timeLayout is fixed width so lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// bucketChunk bounds the number of buckets bound in one count query
// (3 params each, well under SQLite's variable limit).
const bucketChunk = 300

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_occurred_at
		ON events(occurred_at);
	CREATE INDEX IF NOT EXISTS idx_events_category_occurred_at
		ON events(category, occurred_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// where renders the query as a SQL condition on the events table, with
// columns qualified by prefix ("" or "e.").
func where(q store.Query, prefix string) (string, []any) {
	conds := []string{"1 = 1"}
	var args []any
	if q.Category != "" {
		conds = append(conds, prefix+"category = ?")
		args = append(args, q.Category)
	}
	if q.Window != nil {
		conds = append(conds, prefix+"occurred_at >= ?", prefix+"occurred_at < ?")
		args = append(args, formatTime(q.Window.Start), formatTime(q.Window.End))
	}
	return strings.Join(conds, " AND "), args
}

// =============================================================================
// WRITES
// =============================================================================

// Add inserts an event, assigning an ID and creation time when missing.
func (s *Store) Add(ctx context.Context, e store.Event) (store.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = withDefaults(e)
	if err := insert(ctx, s.db, e); err != nil {
		return store.Event{}, err
	}
	return e, nil
}

// AddBatch inserts several events atomically.
func (s *Store) AddBatch(ctx context.Context, events []store.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		if err := insert(ctx, tx, withDefaults(e)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func withDefaults(e store.Event) store.Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return e
}

func insert(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, e store.Event) error {
	query := `
		INSERT INTO events (id, category, title, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		e.ID, e.Category, e.Title, formatTime(e.OccurredAt), formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Reset deletes every event.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM events`)
	return err
}

// =============================================================================
// CALENDAR SOURCE (calendar.Source / calendar.Counter)
// =============================================================================

// Period spans the first event up to just after the last one.
func (s *Store) Period(ctx context.Context, q store.Query) (calendar.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cond, args := where(q, "")
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(occurred_at), MAX(occurred_at) FROM events WHERE `+cond, args...).
		Scan(&first, &last)
	if err != nil {
		return calendar.Period{}, fmt.Errorf("failed to query period: %w", err)
	}
	if !first.Valid || !last.Valid {
		return calendar.Period{}, calendar.ErrNoPeriod
	}

	start, err := parseTime(first.String)
	if err != nil {
		return calendar.Period{}, err
	}
	end, err := parseTime(last.String)
	if err != nil {
		return calendar.Period{}, err
	}
	return calendar.NewPeriod(start, end.Add(time.Nanosecond))
}

// Filter narrows q to the window. No SQL runs until List or Total.
func (s *Store) Filter(_ context.Context, q store.Query, p calendar.Period) (store.Query, error) {
	return q.Narrow(p), nil
}

// Count counts q over every interval of the series with a VALUES table of
// buckets left-joined to events, bucketChunk buckets per statement.
func (s *Store) Count(ctx context.Context, q store.Query, series iter.Seq2[int, calendar.Period]) (calendar.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := calendar.Counts{}
	var args []any
	n := 0
	for page, p := range series {
		args = append(args, page, formatTime(p.Start), formatTime(p.End))
		n++
		if n == bucketChunk {
			if err := s.countChunk(ctx, q, n, args, counts); err != nil {
				return nil, err
			}
			args, n = args[:0], 0
		}
	}
	if n > 0 {
		if err := s.countChunk(ctx, q, n, args, counts); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

func (s *Store) countChunk(ctx context.Context, q store.Query, n int, bucketArgs []any, counts calendar.Counts) error {
	cond, condArgs := where(q, "e.")

	values := strings.TrimSuffix(strings.Repeat("(?, ?, ?), ", n), ", ")
	query := `
		WITH buckets(page, from_at, to_at) AS (VALUES ` + values + `)
		SELECT b.page, COUNT(e.id)
		FROM buckets b
		LEFT JOIN events e
		  ON e.occurred_at >= b.from_at AND e.occurred_at < b.to_at AND ` + cond + `
		GROUP BY b.page
	`
	args := append(append([]any{}, bucketArgs...), condArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to count buckets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var page, count int
		if err := rows.Scan(&page, &count); err != nil {
			return err
		}
		counts[page] = count
	}
	return rows.Err()
}

// =============================================================================
// READS
// =============================================================================

// List returns a page of matching events, oldest first.
func (s *Store) List(ctx context.Context, q store.Query, limit, offset int) ([]store.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cond, args := where(q, "")
	query := `
		SELECT id, category, title, occurred_at, created_at
		FROM events
		WHERE ` + cond + `
		ORDER BY occurred_at ASC, id ASC
		LIMIT ? OFFSET ?
	`
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var result []store.Event
	for rows.Next() {
		var e store.Event
		var occurredAt, createdAt string
		if err := rows.Scan(&e.ID, &e.Category, &e.Title, &occurredAt, &createdAt); err != nil {
			return nil, err
		}
		if e.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Total counts matching events.
func (s *Store) Total(ctx context.Context, q store.Query) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cond, args := where(q, "")
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE `+cond, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Categories lists the distinct categories, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM events ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
