package calendar

import "time"

// =============================================================================
// PERIOD - The search space of a calendar unit
// =============================================================================

// Period is the half-open interval [Start, End).
//
// The outermost period comes from the application's period provider. Every
// narrower period is the active interval of the unit above it.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a validated period.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate fails with a *PeriodError when Start is not before End.
func (p Period) Validate() error {
	if !p.Start.Before(p.End) {
		return &PeriodError{Start: p.Start, End: p.End}
	}
	return nil
}

// Contains returns true if t is within [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Equal compares both bounds as instants.
func (p Period) Equal(other Period) bool {
	return p.Start.Equal(other.Start) && p.End.Equal(other.End)
}

func (p Period) Duration() time.Duration { return p.End.Sub(p.Start) }

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.Format(time.RFC3339) + ", " + p.End.Format(time.RFC3339) + ")"
}
