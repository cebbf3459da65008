package calendar

import (
	"time"
)

// =============================================================================
// SNAPPING - Start of the enclosing calendar unit
// =============================================================================
// All helpers keep the location of their argument. No timezone conversion
// happens here: the caller hands in times already in the wanted location.

// Midnight returns the first instant of the date y-m-d in loc. The date is
// normalized like time.Date (day 0 is the last day of the previous month).
// Where a DST switch skips 00:00, the day starts at the end of the gap.
func Midnight(y int, m time.Month, d int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	want := civil(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if civil(t) >= want {
		return t
	}

	// t fell back onto the previous date: search the first instant of want.
	lo, hi := t, t.Add(24*time.Hour)
	for hi.Sub(lo) > 1 {
		mid := lo.Add(hi.Sub(lo) / 2)
		if civil(mid) < want {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

// civil orders calendar dates as yyyymmdd.
func civil(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func StartOfDay(t time.Time) time.Time {
	return Midnight(t.Year(), t.Month(), t.Day(), t.Location())
}

// StartOfWeek returns the start of the most recent weekStart on or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return Midnight(t.Year(), t.Month(), t.Day()-back, t.Location())
}

func StartOfMonth(t time.Time) time.Time {
	return Midnight(t.Year(), t.Month(), 1, t.Location())
}

func StartOfYear(t time.Time) time.Time {
	return Midnight(t.Year(), time.January, 1, t.Location())
}

// =============================================================================
// ARITHMETIC - Calendar-aware addition between unit boundaries
// =============================================================================
// The Add helpers move the date of t and return the start of the resulting
// date. The time of day is dropped, so a series built from one boundary
// never drifts off midnight.

// AddDays moves t by n calendar dates. A day across a DST switch is 23 or 25
// hours long.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t.Year(), t.Month(), t.Day()+n, t.Location())
}

func AddWeeks(t time.Time, n int) time.Time { return AddDays(t, 7*n) }

// AddMonths moves t by n months, clamping the day to the length of the
// target month: Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	d = min(d, DaysInMonth(target.Year(), target.Month()))
	return Midnight(target.Year(), target.Month(), d, t.Location())
}

// AddYears moves t by n years. Feb 29 lands on Feb 28 in common years.
func AddYears(t time.Time, n int) time.Time { return AddMonths(t, 12*n) }

// =============================================================================
// COUNTING - Boundary crossings between two instants
// =============================================================================

// DaysBetween counts calendar dates from a to b, ignoring the time of day
// and the length of each day.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	// Unix seconds: a Duration saturates after ~292 years.
	return int((ub.Unix() - ua.Unix()) / 86400)
}

// MonthsBetween counts first-of-month boundaries from a to b.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func YearsBetween(a, b time.Time) int { return b.Year() - a.Year() }

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of next month is last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
