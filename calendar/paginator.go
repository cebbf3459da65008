package calendar

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// =============================================================================
// COLLABORATORS - Implemented by the application
// =============================================================================

// Source gives the calendar access to a collection handle C (a query, a
// slice, a filter descriptor...).
type Source[C any] interface {
	// Period returns the overall time range of the collection.
	Period(ctx context.Context, coll C) (Period, error)

	// Filter narrows the collection to items stored in [p.Start, p.End).
	Filter(ctx context.Context, coll C, p Period) (C, error)
}

// Counter is optional. It counts the collection over every interval of a
// series in one call, keyed by page.
type Counter[C any] interface {
	Count(ctx context.Context, coll C, series iter.Seq2[int, Period]) (Counts, error)
}

// =============================================================================
// PAGINATOR
// =============================================================================

// Paginator runs a chain against a collection.
type Paginator[C any] struct {
	cfg     Config
	source  Source[C]
	counter Counter[C]
}

// NewPaginator validates cfg and requires a source. counter may be nil.
func NewPaginator[C any](cfg Config, source Source[C], counter Counter[C]) (*Paginator[C], error) {
	if source == nil {
		return nil, &ConfigError{Field: "source", Reason: "a period provider and collection filter are required"}
	}
	if cfg.IsActive() {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return &Paginator[C]{cfg: cfg.Normalize(), source: source, counter: counter}, nil
}

// Config returns the normalized configuration.
func (p *Paginator[C]) Config() Config { return p.cfg }

// Paginate builds the chain for the requested pages and returns the
// collection filtered by its final interval. An inactive calendar returns
// a nil chain and the collection as is.
func (p *Paginator[C]) Paginate(ctx context.Context, coll C, pages PageSource) (*Chain, C, error) {
	if !p.cfg.IsActive() {
		return nil, coll, nil
	}

	period, err := p.source.Period(ctx, coll)
	if err != nil {
		return nil, coll, fmt.Errorf("calendar period: %w", err)
	}

	var count CountFunc
	if p.counter != nil {
		count = func(ctx context.Context, u *Unit) (Counts, error) {
			return p.counter.Count(ctx, coll, u.Series())
		}
	}

	chain, err := Build(ctx, p.cfg, period, pages, count)
	if err != nil {
		return nil, coll, err
	}

	filtered, err := p.source.Filter(ctx, coll, chain.Interval())
	if err != nil {
		return nil, coll, fmt.Errorf("calendar filter: %w", err)
	}
	return chain, filtered, nil
}

// PagesAt returns the page of every unit whose interval contains t, for
// "jump to date" links. An inactive calendar has no pages.
func (p *Paginator[C]) PagesAt(ctx context.Context, coll C, t time.Time) (PageMap, error) {
	if !p.cfg.IsActive() {
		return PageMap{}, nil
	}
	period, err := p.source.Period(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("calendar period: %w", err)
	}
	return PagesAt(p.cfg, period, t)
}
