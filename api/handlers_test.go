/*
handlers_test.go - HTTP tests for the calendar API

Tests for:
- Calendar pagination of events (pages, counts, links, jump to date)
- Error mapping (404 empty, 400 invalid pages)
- Event creation, configuration and scenarios
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/calendar-engine/factory"
	"github.com/warp/calendar-engine/store"
	"github.com/warp/calendar-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const testCalendar = `{
	"year":  {"order": "desc"},
	"month": {},
	"day":   {},
	"pager": {"limit": 1}
}`

type testServer struct {
	handler *Handler
	router  http.Handler
	store   *memory.Memory
}

func newTestServer(t *testing.T, doc string) *testServer {
	t.Helper()
	settings, err := factory.NewChainFactory().ParseJSON([]byte(doc))
	require.NoError(t, err)

	m := memory.NewMemory()
	h, err := NewHandler(m, settings, time.UTC)
	require.NoError(t, err)
	return &testServer{handler: h, router: NewRouter(h, nil), store: m}
}

func (s *testServer) seed(t *testing.T) {
	t.Helper()
	at := func(y int, mo time.Month, d, h int) time.Time {
		return time.Date(y, mo, d, h, 0, 0, 0, time.UTC)
	}
	require.NoError(t, s.store.AddBatch(context.Background(), []store.Event{
		store.NewEvent("commits", "november", at(2023, time.November, 3, 9)),
		store.NewEvent("commits", "morning", at(2024, time.January, 10, 9)),
		store.NewEvent("reviews", "evening", at(2024, time.January, 10, 17)),
		store.NewEvent("commits", "later", at(2024, time.January, 22, 11)),
		store.NewEvent("commits", "march", at(2024, time.March, 2, 8)),
	}))
}

func (s *testServer) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v))
	return v
}

// =============================================================================
// LIST EVENTS
// =============================================================================

func TestListEvents_DrillDown(t *testing.T) {
	// GIVEN: events from November 2023 to March 2024
	s := newTestServer(t, testCalendar)
	s.seed(t)

	// WHEN: 2024 > January > the 10th is requested, second flat page
	rec := s.do(t, http.MethodGet, "/api/events?year_page=1&month_page=1&day_page=10&page=2", "")

	// THEN: the window is that day and the second event of the day is listed
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)

	assert.Equal(t, "2024-01-10T00:00:00Z", resp.From)
	assert.Equal(t, "2024-01-11T00:00:00Z", resp.To)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "evening", resp.Events[0].Title)
	assert.Equal(t, 2, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	require.Len(t, resp.Calendar, 3)
	year, month, day := resp.Calendar[0], resp.Calendar[1], resp.Calendar[2]
	assert.Equal(t, "year", year.Kind)
	assert.Equal(t, "2024", year.Label)
	assert.Equal(t, 2, year.Pages)
	assert.Equal(t, 12, month.Pages)
	assert.Equal(t, 31, day.Pages)

	// Counts per page
	require.NotNil(t, month.Series[0].Count)
	assert.Equal(t, 3, *month.Series[0].Count)
	assert.True(t, month.Series[0].Active)
	assert.Equal(t, "1", month.Series[0].Share.String())
	assert.Equal(t, 2, *day.Series[9].Count)
	assert.Equal(t, 0, *day.Series[10].Count)
}

func TestListEvents_LinksDropFinerPages(t *testing.T) {
	s := newTestServer(t, testCalendar)
	s.seed(t)

	rec := s.do(t, http.MethodGet, "/api/events?year_page=1&month_page=1&day_page=10&page=2&category=commits", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)

	month := resp.Calendar[1]
	link, err := url.ParseQuery(strings.TrimPrefix(month.Series[2].Link, "?"))
	require.NoError(t, err)
	assert.Equal(t, "3", link.Get("month_page"))
	assert.Equal(t, "1", link.Get("year_page"))
	assert.Equal(t, "commits", link.Get("category"))
	assert.Empty(t, link.Get("day_page"))
	assert.Empty(t, link.Get("page"))

	require.NotNil(t, month.Next)
	assert.Equal(t, 2, month.Next.Page)
	assert.Equal(t, "2024-02", month.Next.Label)
	assert.Nil(t, month.Prev)

	day := resp.Calendar[2]
	require.NotNil(t, day.Prev)
	assert.Contains(t, day.Prev.Link, "day_page=9")
	assert.Contains(t, day.Prev.Link, "month_page=1")
}

func TestListEvents_DefaultPages(t *testing.T) {
	s := newTestServer(t, testCalendar)
	s.seed(t)

	rec := s.do(t, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)

	// desc years default to the page count
	assert.Equal(t, 2, resp.Calendar[0].Page)
	assert.Equal(t, "2023", resp.Calendar[0].Label)
	assert.Equal(t, "2023-01-01T00:00:00Z", resp.From)
	assert.Empty(t, resp.Events)
}

func TestListEvents_JumpToDate(t *testing.T) {
	s := newTestServer(t, testCalendar)
	s.seed(t)

	rec := s.do(t, http.MethodGet, "/api/events?at=2024-01-22", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)

	assert.Equal(t, 1, resp.Calendar[0].Page)
	assert.Equal(t, 1, resp.Calendar[1].Page)
	assert.Equal(t, 22, resp.Calendar[2].Page)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "later", resp.Events[0].Title)

	// The jump resets the flat page of the previous window
	rec = s.do(t, http.MethodGet, "/api/events?year_page=2&page=2&at=2024-01-22", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[EventsResponse](t, rec)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 1, resp.Pagination.Total)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "later", resp.Events[0].Title)
	assert.NotContains(t, resp.Calendar[2].Series[0].Link, "at=")

	rec = s.do(t, http.MethodGet, "/api/events?at=22/01/2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEvents_Errors(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := newTestServer(t, testCalendar)
		rec := s.do(t, http.MethodGet, "/api/events", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	s := newTestServer(t, testCalendar)
	s.seed(t)

	tests := []struct {
		name  string
		query string
	}{
		{"out of range", "year_page=1&month_page=13"},
		{"not an integer", "year_page=last"},
		{"zero", "day_page=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/events?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestListEvents_Clamp(t *testing.T) {
	s := newTestServer(t, `{"month": {}, "out_of_range": "clamp"}`)
	s.seed(t)

	rec := s.do(t, http.MethodGet, "/api/events?month_page=99", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)
	assert.Equal(t, 5, resp.Calendar[0].Page)
	assert.Equal(t, "2024-03", resp.Calendar[0].Label)
}

func TestListEvents_Inactive(t *testing.T) {
	s := newTestServer(t, `{"active": false}`)
	s.seed(t)

	rec := s.do(t, http.MethodGet, "/api/events?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)
	assert.Nil(t, resp.Calendar)
	assert.Len(t, resp.Events, 5)
}

// =============================================================================
// OTHER ENDPOINTS
// =============================================================================

func TestCreateEvent(t *testing.T) {
	s := newTestServer(t, testCalendar)

	rec := s.do(t, http.MethodPost, "/api/events", `{"category": "notes", "title": "hello", "occurred_at": "2024-02-29"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[EventDTO](t, rec)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "2024-02-29T00:00:00Z", e.OccurredAt)

	rec = s.do(t, http.MethodPost, "/api/events", `{"title": "x", "occurred_at": "2024-03-01T10:00:00+01:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2024-03-01T09:00:00Z", decode[EventDTO](t, rec).OccurredAt)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/events", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/events", `{"title": " ", "occurred_at": "2024-01-01"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/events", `{"title": "x", "occurred_at": "soon"}`).Code)

	rec = s.do(t, http.MethodGet, "/api/categories", "")
	assert.Equal(t, []string{"", "notes"}, decode[[]string](t, rec))
}

func TestGetCalendarConfig(t *testing.T) {
	s := newTestServer(t, `{"year": {}, "week": {"week_start": "monday"}, "pager": {"page_param": "p", "limit": 7}}`)

	rec := s.do(t, http.MethodGet, "/api/calendar/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[CalendarConfigDTO](t, rec)

	assert.True(t, cfg.Active)
	assert.Equal(t, "p", cfg.PageParam)
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, "error", cfg.OutOfRange)
	assert.Equal(t, "UTC", cfg.Location)
	require.Len(t, cfg.Units, 2)
	assert.Equal(t, "year_p", cfg.Units[0].PageParam)
	assert.Equal(t, "asc", cfg.Units[0].Order)
	assert.Equal(t, "2006", cfg.Units[0].Format)
	assert.Equal(t, "monday", cfg.Units[1].WeekStart)
}

func TestScenarios(t *testing.T) {
	s := newTestServer(t, testCalendar)

	rec := s.do(t, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(loaders))

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "leap-year"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 8, decode[map[string]any](t, rec)["events"])

	rec = s.do(t, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "leap-year", decode[map[string]string](t, rec)["scenario_id"])

	// 2024 > February > the 29th
	rec = s.do(t, http.MethodGet, "/api/events?at=2024-02-29&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EventsResponse](t, rec)
	assert.Len(t, resp.Events, 2)
	assert.Equal(t, 29, resp.Calendar[2].Pages)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`).Code)

	rec = s.do(t, http.MethodPost, "/api/scenarios/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/events", "").Code)
}

func TestScenarios_AllLoad(t *testing.T) {
	for id := range loaders {
		t.Run(id, func(t *testing.T) {
			s := newTestServer(t, testCalendar)
			require.NoError(t, s.handler.LoadScenarioByID(context.Background(), id))
			rec := s.do(t, http.MethodGet, "/api/events", "")
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestScenarios_ConcurrentRequests(t *testing.T) {
	s := newTestServer(t, testCalendar)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "sparse"}`)
		}()
		go func() {
			defer wg.Done()
			s.do(t, http.MethodGet, "/api/scenarios/current", "")
		}()
	}
	wg.Wait()

	rec := s.do(t, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "sparse", decode[map[string]string](t, rec)["scenario_id"])
}

func TestMetrics_Inactive(t *testing.T) {
	s := newTestServer(t, `{"active": false}`)
	s.seed(t)
	s.do(t, http.MethodGet, "/api/events", "")

	body := s.do(t, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, body, `calendar_chain_builds_total{result="inactive"} 1`)
	assert.NotContains(t, body, `result="ok"`)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, testCalendar)
	s.seed(t)
	s.do(t, http.MethodGet, "/api/events", "")
	s.do(t, http.MethodGet, "/api/events?day_page=x", "")

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `calendar_chain_builds_total{result="ok"} 1`)
	assert.Contains(t, body, `calendar_chain_builds_total{result="client_error"} 1`)
	assert.Contains(t, body, "calendar_count_duration_seconds")
}
