/*
handlers.go - HTTP API handlers for the calendar engine

PURPOSE:
  Exposes the calendar paginator over REST. Handles HTTP request/response,
  JSON serialization, and delegates to the calendar and the event store.

ENDPOINTS:
  Events:
    GET    /api/events                 Calendar + one flat page of events
    POST   /api/events                 Create event

  Calendar:
    GET    /api/calendar/config        Effective chain configuration
    GET    /api/categories             Distinct event categories

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Delete every event

QUERY PARAMETERS (GET /api/events):
  <kind>_page  page of each calendar unit (e.g. year_page=2)
  page, limit  flat pagination inside the finest calendar window
  category     restrict to one category
  at           YYYY-MM-DD, select the pages containing that date

REQUEST FLOW:
  1. Parse query
  2. Build the calendar chain (period -> units -> counts -> window)
  3. Page through the events of the window
  4. Serialize calendar, links and events

ERROR HANDLING:
  - 400: Config, out of range, invalid page or period
  - 404: Nothing to paginate (no events)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/warp/calendar-engine/calendar"
	"github.com/warp/calendar-engine/factory"
	"github.com/warp/calendar-engine/pager"
	"github.com/warp/calendar-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    store.Store
	Settings *factory.Settings
	Location *time.Location
	Metrics  *Metrics

	paginator *calendar.Paginator[store.Query]

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler. loc is the location calendar units snap in;
// nil means time.Local.
func NewHandler(s store.Store, settings *factory.Settings, loc *time.Location) (*Handler, error) {
	if s == nil {
		return nil, &calendar.ConfigError{Field: "store", Reason: "an event store is required"}
	}
	if settings == nil {
		return nil, &calendar.ConfigError{Field: "settings", Reason: "calendar settings are required"}
	}
	if loc == nil {
		loc = time.Local
	}

	metrics := NewMetrics()
	src := &localSource{store: s, loc: loc, metrics: metrics}
	p, err := calendar.NewPaginator[store.Query](settings.Chain, src, src)
	if err != nil {
		return nil, err
	}

	return &Handler{
		Store:     s,
		Settings:  settings,
		Location:  loc,
		Metrics:   metrics,
		paginator: p,
	}, nil
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns the calendar for the requested pages and one flat page
// of the events inside the finest window.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	coll := store.Query{Category: query.Get("category")}
	cfg := h.paginator.Config()

	if at := query.Get("at"); at != "" {
		t, err := time.ParseInLocation("2006-01-02", at, h.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid at format (use YYYY-MM-DD)", err)
			return
		}
		pages, err := h.paginator.PagesAt(ctx, coll, t)
		if err != nil {
			h.writeCalendarError(w, err)
			return
		}
		// A new window invalidates the flat page
		query = withPages(query, pages)
		query.Del("at")
		query.Del(cfg.PageParam)
	}

	chain, filtered, err := h.paginator.Paginate(ctx, coll, calendar.QueryPages(query))
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	if chain != nil {
		h.Metrics.ChainBuilds.WithLabelValues("ok").Inc()
	} else {
		h.Metrics.ChainBuilds.WithLabelValues("inactive").Inc()
	}

	params := pager.FromQuery(query, cfg.PageParam, h.Settings.Limit)
	total, err := h.Store.Total(ctx, filtered)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events", err)
		return
	}
	events, err := h.Store.List(ctx, filtered, params.Limit, params.Offset())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	resp := EventsResponse{
		Events:     make([]EventDTO, len(events)),
		Pagination: pager.NewMeta(params.Page, params.Limit, total),
	}
	for i, e := range events {
		resp.Events[i] = h.toEventDTO(e)
	}
	if chain != nil {
		resp.Calendar = h.toUnitDTOs(chain, query)
		window := chain.Interval()
		resp.From = h.format(window.Start)
		resp.To = h.format(window.End)
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateEvent stores a new event.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required", nil)
		return
	}

	at, err := h.parseInstant(req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid occurred_at format (use RFC 3339 or YYYY-MM-DD)", err)
		return
	}

	e, err := h.Store.Add(r.Context(), store.NewEvent(req.Category, req.Title, at))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create event", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toEventDTO(e))
}

// ListCategories returns the distinct categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCalendarConfig returns the effective configuration.
func (h *Handler) GetCalendarConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.paginator.Config()
	dto := CalendarConfigDTO{
		Active:     cfg.IsActive(),
		PageParam:  cfg.PageParam,
		Limit:      h.Settings.Limit,
		OutOfRange: string(cfg.OutOfRange),
		Location:   h.Location.String(),
		Units:      make([]UnitConfigDTO, len(cfg.Units)),
	}
	for i, u := range cfg.Units {
		dto.Units[i] = UnitConfigDTO{
			Kind:      string(u.Kind),
			Order:     string(u.Order),
			Format:    u.Format,
			PageParam: u.PageParam,
		}
		if u.Kind == calendar.KindWeek {
			dto.Units[i].WeekStart = strings.ToLower(u.WeekStart.String())
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) toUnitDTOs(chain *calendar.Chain, query url.Values) []UnitDTO {
	dtos := make([]UnitDTO, len(chain.Units))
	for i, u := range chain.Units {
		dto := UnitDTO{
			Kind:      string(u.Kind),
			Order:     string(u.Order),
			PageParam: u.PageParam,
			Pages:     u.Pages,
			Page:      u.Page,
			From:      h.format(u.From),
			To:        h.format(u.To),
			Label:     u.Label(u.Page),
			Series:    make([]PageDTO, 0, u.Pages),
		}
		link := func(page int) string {
			return "?" + chain.LinkParams(i, query, page).Encode()
		}
		if prev, ok := u.Prev(); ok {
			dto.Prev = &LinkDTO{Page: prev, Label: u.Label(prev), Link: link(prev)}
		}
		if next, ok := u.Next(); ok {
			dto.Next = &LinkDTO{Page: next, Label: u.Label(next), Link: link(next)}
		}

		for page, p := range u.Series() {
			pd := PageDTO{
				Page:   page,
				Label:  u.Label(page),
				From:   h.format(p.Start),
				To:     h.format(p.End),
				Link:   link(page),
				Active: page == u.Page,
			}
			if n, ok := u.Counts.Get(page); ok {
				share := u.Counts.Share(page)
				pd.Count = &n
				pd.Share = &share
			}
			dto.Series = append(dto.Series, pd)
		}
		dtos[i] = dto
	}
	return dtos
}

func (h *Handler) toEventDTO(e store.Event) EventDTO {
	return EventDTO{
		ID:         e.ID,
		Category:   e.Category,
		Title:      e.Title,
		OccurredAt: h.format(e.OccurredAt),
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) format(t time.Time) string {
	return t.In(h.Location).Format(time.RFC3339)
}

// parseInstant accepts RFC 3339 or a date at local midnight.
func (h *Handler) parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, h.Location)
}

// withPages returns a copy of query with the given unit pages set.
func withPages(query url.Values, pages calendar.PageMap) url.Values {
	out := calendar.DropParams(nil, query)
	for param, page := range pages {
		out.Set(param, fmt.Sprint(page))
	}
	return out
}

func (h *Handler) writeCalendarError(w http.ResponseWriter, err error) {
	switch {
	case calendar.IsNotFound(err):
		writeError(w, http.StatusNotFound, "No events to paginate", err)
	case calendar.IsClientError(err):
		h.Metrics.ChainBuilds.WithLabelValues("client_error").Inc()
		writeError(w, http.StatusBadRequest, "Invalid calendar request", err)
	default:
		h.Metrics.ChainBuilds.WithLabelValues("error").Inc()
		log.Printf("calendar: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to build calendar", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
