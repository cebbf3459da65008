package calendar

import (
	"time"
)

// =============================================================================
// UNIT KIND - Calendar granularity
// =============================================================================

type Kind string

const (
	KindYear  Kind = "year"
	KindMonth Kind = "month"
	KindWeek  Kind = "week"
	KindDay   Kind = "day"
)

// Kinds lists the supported kinds, coarse to fine.
var Kinds = []Kind{KindYear, KindMonth, KindWeek, KindDay}

// ParseKind converts a config string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := arithmetics[k]; !ok {
		return "", &ConfigError{Field: "kind", Reason: "unknown unit " + s, Allowed: kindNames()}
	}
	return k, nil
}

func kindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}

// Order sets the direction of page numbering.
type Order string

const (
	OrderAsc  Order = "asc"  // page 1 is the earliest unit
	OrderDesc Order = "desc" // page 1 is the latest unit
)

// =============================================================================
// ARITHMETIC TABLE - One entry per kind
// =============================================================================

// arithmetic isolates the calendar math of a kind. weekStart is only read
// by the week entry.
type arithmetic struct {
	snap    func(t time.Time, weekStart time.Weekday) time.Time
	add     func(t time.Time, n int) time.Time
	between func(a, b time.Time) int
	format  string
}

var arithmetics = map[Kind]arithmetic{
	KindYear: {
		snap:    func(t time.Time, _ time.Weekday) time.Time { return StartOfYear(t) },
		add:     AddYears,
		between: YearsBetween,
		format:  "2006",
	},
	KindMonth: {
		snap:    func(t time.Time, _ time.Weekday) time.Time { return StartOfMonth(t) },
		add:     AddMonths,
		between: MonthsBetween,
		format:  "2006-01",
	},
	KindWeek: {
		snap:    StartOfWeek,
		add:     AddWeeks,
		between: func(a, b time.Time) int { return DaysBetween(a, b) / 7 },
		format:  "2006-01-02",
	},
	KindDay: {
		snap:    func(t time.Time, _ time.Weekday) time.Time { return StartOfDay(t) },
		add:     AddDays,
		between: DaysBetween,
		format:  "2006-01-02",
	},
}

// snapUp returns t when it already sits on a boundary, else the next one.
func (a arithmetic) snapUp(t time.Time, weekStart time.Weekday) time.Time {
	s := a.snap(t, weekStart)
	if s.Equal(t) {
		return t
	}
	return a.add(s, 1)
}
