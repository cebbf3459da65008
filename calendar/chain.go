/*
chain.go - Composition of calendar units into a drill-down hierarchy

PURPOSE:
  Builds the configured units in declaration order. The active interval of
  unit i is the search period of unit i+1; the active interval of the last
  unit is the window the collection gets filtered by.

FLOW:
  1. Validate config (non-empty, each kind at most once)
  2. For each unit: read its page param, build it over the current period
  3. Optionally attach counts (one CountFunc call per unit, in chain order)
  4. Return the units and the final narrow interval

  A chain is built fresh per request and holds no state across requests.

SEE ALSO:
  - unit.go: single unit computation
  - params.go: page param cascade for links
  - paginator.go: wires a chain to a collection source
*/
package calendar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPageParam is the name of the flat (non-calendar) page selector.
const DefaultPageParam = "page"

// =============================================================================
// CHAIN CONFIG
// =============================================================================

// Config declares the units of a chain, coarse to fine in the usual case.
type Config struct {
	Units      []UnitConfig
	PageParam  string           // flat page param, default "page"
	OutOfRange OutOfRangePolicy // default OutOfRangeFail
	Active     *bool            // nil means active
}

// IsActive reports whether the calendar filters the collection at all.
func (c Config) IsActive() bool {
	return c.Active == nil || *c.Active
}

// Normalize fills defaults. Unit page params are namespaced by kind on top
// of the flat page param: "year_page", "month_page", ...
func (c Config) Normalize() Config {
	if c.PageParam == "" {
		c.PageParam = DefaultPageParam
	}
	if c.OutOfRange == "" {
		c.OutOfRange = OutOfRangeFail
	}
	units := make([]UnitConfig, len(c.Units))
	for i, u := range c.Units {
		if u.PageParam == "" {
			u.PageParam = string(u.Kind) + "_" + c.PageParam
		}
		units[i] = u.withDefaults()
	}
	c.Units = units
	return c
}

// Validate checks the chain as a whole and each unit.
func (c Config) Validate() error {
	if len(c.Units) == 0 {
		return &ConfigError{Field: "units", Reason: "at least one unit is required", Allowed: kindNames()}
	}
	switch c.OutOfRange {
	case "", OutOfRangeFail, OutOfRangeClamp:
	default:
		return &ConfigError{Field: "out_of_range", Reason: "unknown policy " + string(c.OutOfRange),
			Allowed: []string{string(OutOfRangeFail), string(OutOfRangeClamp)}}
	}

	n := c.Normalize()
	kinds := make(map[Kind]bool, len(n.Units))
	params := map[string]bool{n.PageParam: true}
	for _, u := range n.Units {
		if err := u.Validate(); err != nil {
			return err
		}
		if kinds[u.Kind] {
			return &ConfigError{Field: string(u.Kind), Reason: "unit declared more than once"}
		}
		kinds[u.Kind] = true
		if params[u.PageParam] {
			return &ConfigError{Field: string(u.Kind) + ".page_param", Reason: "duplicate page param " + u.PageParam}
		}
		params[u.PageParam] = true
	}
	return nil
}

// =============================================================================
// PAGE SOURCE
// =============================================================================

// PageSource reads the requested page of a unit by its param name.
type PageSource interface {
	Lookup(param string) (page int, ok bool, err error)
}

// QueryPages reads pages from URL query values. Empty values are absent.
type QueryPages url.Values

func (q QueryPages) Lookup(param string) (int, bool, error) {
	raw := strings.TrimSpace(url.Values(q).Get(param))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s=%q: %w", param, raw, ErrInvalidPage)
	}
	return n, true, nil
}

// PageMap is a PageSource over a plain map, handy for tests and the CLI.
type PageMap map[string]int

func (m PageMap) Lookup(param string) (int, bool, error) {
	n, ok := m[param]
	return n, ok, nil
}

// =============================================================================
// CHAIN
// =============================================================================

// CountFunc returns per-page counts for the full series of a unit.
// It may do I/O; the chain never retries or caches it.
type CountFunc func(ctx context.Context, u *Unit) (Counts, error)

// Chain is the ordered result of Build.
type Chain struct {
	Units     []*Unit
	PageParam string // flat page param
	Period    Period // search period of the first unit
}

// Build composes the units of cfg over period. pages and count may be nil.
func Build(ctx context.Context, cfg Config, period Period, pages PageSource, count CountFunc) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()

	chain := &Chain{
		Units:     make([]*Unit, 0, len(cfg.Units)),
		PageParam: cfg.PageParam,
		Period:    period,
	}
	current := period
	for _, uc := range cfg.Units {
		var page *int
		if pages != nil {
			n, ok, err := pages.Lookup(uc.PageParam)
			if err != nil {
				return nil, err
			}
			if ok {
				page = &n
			}
		}

		u, err := NewUnit(uc, current, page, cfg.OutOfRange)
		if err != nil {
			return nil, fmt.Errorf("build %s unit: %w", uc.Kind, err)
		}
		if count != nil {
			counts, err := count(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("count %s unit: %w", uc.Kind, err)
			}
			if counts == nil {
				counts = Counts{}
			}
			u.Counts = counts
		}

		chain.Units = append(chain.Units, u)
		current = u.Active()
	}
	return chain, nil
}

// Unit returns the unit of the given kind, or nil.
func (c *Chain) Unit(kind Kind) *Unit {
	for _, u := range c.Units {
		if u.Kind == kind {
			return u
		}
	}
	return nil
}

// Interval is the active interval of the finest unit.
func (c *Chain) Interval() Period {
	return c.Units[len(c.Units)-1].Active()
}

// PagesAt resolves, unit by unit, the pages whose intervals contain t. Units
// that do not reach t get their first or last page.
func PagesAt(cfg Config, period Period, t time.Time) (PageMap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()

	pages := make(PageMap, len(cfg.Units))
	current := period
	for _, uc := range cfg.Units {
		probe, err := NewUnit(uc, current, nil, cfg.OutOfRange)
		if err != nil {
			return nil, err
		}
		page := probe.FitPageAt(t)
		u, err := NewUnit(uc, current, &page, cfg.OutOfRange)
		if err != nil {
			return nil, err
		}
		pages[uc.PageParam] = page
		current = u.Active()
	}
	return pages, nil
}
