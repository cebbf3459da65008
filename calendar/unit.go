/*
unit.go - One level of the calendar hierarchy

PURPOSE:
  A Unit splits its search period into whole calendar units (years, months,
  weeks or days) and maps a page number onto the [from, to) interval of one
  of them. The selected interval is the search period of the next unit.

BOUNDARIES:
  Initial = period start snapped down to its unit
  Final   = period end snapped up to the next boundary (kept when on one)
  Pages   = number of unit boundaries crossed from Initial to Final

  Pages is counted with calendar arithmetic (kind.go), never by dividing a
  duration: months, years and DST days do not have a fixed length.

NUMBERING:
  asc:  page 1 is the earliest unit
  desc: page 1 is the latest unit

SEE ALSO:
  - kind.go: per-kind arithmetic table
  - chain.go: composes units
*/
package calendar

import (
	"iter"
	"time"
)

// OutOfRangePolicy decides what happens to a page outside [1, pages].
type OutOfRangePolicy string

const (
	OutOfRangeFail  OutOfRangePolicy = "error"
	OutOfRangeClamp OutOfRangePolicy = "clamp"
)

// =============================================================================
// UNIT CONFIG
// =============================================================================

// UnitConfig is the per-unit configuration surface.
type UnitConfig struct {
	Kind      Kind
	Order     Order        // default asc
	Format    string       // Go time layout used by Label, default per kind
	PageParam string       // default "<kind>_page"
	WeekStart time.Weekday // week only, default Sunday
}

// withDefaults fills the empty fields.
func (c UnitConfig) withDefaults() UnitConfig {
	if c.Order == "" {
		c.Order = OrderAsc
	}
	if a, ok := arithmetics[c.Kind]; ok && c.Format == "" {
		c.Format = a.format
	}
	if c.PageParam == "" {
		c.PageParam = string(c.Kind) + "_page"
	}
	return c
}

// Validate checks the kind, order and week start.
func (c UnitConfig) Validate() error {
	if _, ok := arithmetics[c.Kind]; !ok {
		return &ConfigError{Field: "kind", Reason: "unknown unit " + string(c.Kind), Allowed: kindNames()}
	}
	field := string(c.Kind)
	switch c.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return &ConfigError{Field: field + ".order", Reason: "unknown order " + string(c.Order),
			Allowed: []string{string(OrderAsc), string(OrderDesc)}}
	}
	if c.WeekStart < time.Sunday || c.WeekStart > time.Saturday {
		return &ConfigError{Field: field + ".week_start", Reason: "weekday out of range"}
	}
	if c.WeekStart != time.Sunday && c.Kind != KindWeek {
		return &ConfigError{Field: field + ".week_start", Reason: "only valid for week units"}
	}
	return nil
}

// =============================================================================
// UNIT
// =============================================================================

// Unit is an immutable page computation, except for Counts which the chain
// sets once right after construction.
type Unit struct {
	UnitConfig

	Period  Period    // search space
	Initial time.Time // Period.Start snapped down
	Final   time.Time // Period.End snapped up
	Pages   int
	Page    int       // resolved page in [1, Pages]
	From    time.Time // active interval start
	To      time.Time // active interval end (exclusive)

	// Counts is nil when no counter is configured; nil means unknown.
	Counts Counts

	math arithmetic
}

// NewUnit computes the boundaries of a unit over period and resolves page.
// A nil page selects the default: 1 for asc, Pages for desc.
func NewUnit(cfg UnitConfig, period Period, page *int, policy OutOfRangePolicy) (*Unit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	a := arithmetics[cfg.Kind]

	u := &Unit{
		UnitConfig: cfg,
		Period:     period,
		Initial:    a.snap(period.Start, cfg.WeekStart),
		Final:      a.snapUp(period.End, cfg.WeekStart),
		math:       a,
	}
	u.Pages = a.between(u.Initial, u.Final)

	resolved, err := u.resolve(page, policy)
	if err != nil {
		return nil, err
	}
	u.Page = resolved
	active, err := u.FilterFor(resolved)
	if err != nil {
		return nil, err
	}
	u.From, u.To = active.Start, active.End
	return u, nil
}

func (u *Unit) resolve(page *int, policy OutOfRangePolicy) (int, error) {
	if page == nil {
		if u.Order == OrderDesc {
			return u.Pages, nil
		}
		return 1, nil
	}
	p := *page
	if p >= 1 && p <= u.Pages {
		return p, nil
	}
	if policy == OutOfRangeClamp {
		return max(1, min(p, u.Pages)), nil
	}
	return 0, &OutOfRangeError{Kind: u.Kind, Page: p, Pages: u.Pages}
}

// Active returns the interval selected by Page.
func (u *Unit) Active() Period { return Period{Start: u.From, End: u.To} }

// index maps a page number to its 0-based position from Initial.
func (u *Unit) index(page int) int {
	if u.Order == OrderDesc {
		return u.Pages - page
	}
	return page - 1
}

// FilterFor returns the [from, to) interval of page.
func (u *Unit) FilterFor(page int) (Period, error) {
	if page < 1 || page > u.Pages {
		return Period{}, &OutOfRangeError{Kind: u.Kind, Page: page, Pages: u.Pages}
	}
	i := u.index(page)
	return Period{Start: u.math.add(u.Initial, i), End: u.math.add(u.Initial, i+1)}, nil
}

// Series lazily yields the interval of each requested page, or of every
// page in numbering order when none is given. Pages out of range are skipped.
func (u *Unit) Series(pages ...int) iter.Seq2[int, Period] {
	return func(yield func(int, Period) bool) {
		if len(pages) == 0 {
			for page := 1; page <= u.Pages; page++ {
				p, _ := u.FilterFor(page)
				if !yield(page, p) {
					return
				}
			}
			return
		}
		for _, page := range pages {
			p, err := u.FilterFor(page)
			if err != nil {
				continue
			}
			if !yield(page, p) {
				return
			}
		}
	}
}

// Label formats the start of page with the unit format. Out of range pages
// have an empty label.
func (u *Unit) Label(page int) string {
	p, err := u.FilterFor(page)
	if err != nil {
		return ""
	}
	return p.Start.Format(u.Format)
}

// PageAt returns the page whose interval contains t.
func (u *Unit) PageAt(t time.Time) (int, error) {
	if t.Before(u.Initial) || !t.Before(u.Final) {
		return 0, &OutOfRangeError{Kind: u.Kind, Page: u.pageOf(t), Pages: u.Pages}
	}
	return u.pageOf(t), nil
}

// FitPageAt is PageAt clamped to the first or last page.
func (u *Unit) FitPageAt(t time.Time) int {
	return max(1, min(u.pageOf(t), u.Pages))
}

func (u *Unit) pageOf(t time.Time) int {
	i := u.math.between(u.Initial, u.math.snap(t, u.WeekStart))
	if u.Order == OrderDesc {
		return u.Pages - i
	}
	return i + 1
}

// Prev returns the page before the current one, if any.
func (u *Unit) Prev() (int, bool) {
	if u.Page <= 1 {
		return 0, false
	}
	return u.Page - 1, true
}

// Next returns the page after the current one, if any.
func (u *Unit) Next() (int, bool) {
	if u.Page >= u.Pages {
		return 0, false
	}
	return u.Page + 1, true
}
