package api

import (
	"context"
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/warp/calendar-engine/calendar"
	"github.com/warp/calendar-engine/store"
)

// localSource adapts a store to the calendar: periods are moved into the
// server location so units snap to local midnights, and count queries are
// timed.
type localSource struct {
	store   store.Store
	loc     *time.Location
	metrics *Metrics
}

var (
	_ calendar.Source[store.Query]  = (*localSource)(nil)
	_ calendar.Counter[store.Query] = (*localSource)(nil)
)

func (s *localSource) Period(ctx context.Context, q store.Query) (calendar.Period, error) {
	p, err := s.store.Period(ctx, q)
	if err != nil {
		return calendar.Period{}, err
	}
	return calendar.Period{Start: p.Start.In(s.loc), End: p.End.In(s.loc)}, nil
}

func (s *localSource) Filter(ctx context.Context, q store.Query, p calendar.Period) (store.Query, error) {
	return s.store.Filter(ctx, q, p)
}

func (s *localSource) Count(ctx context.Context, q store.Query, series iter.Seq2[int, calendar.Period]) (calendar.Counts, error) {
	timer := prometheus.NewTimer(s.metrics.CountDuration)
	defer timer.ObserveDuration()

	counts, err := s.store.Count(ctx, q, series)
	if err == nil {
		s.metrics.CountBuckets.Observe(float64(len(counts)))
	}
	return counts, err
}
