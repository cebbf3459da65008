/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built event sets that exercise the calendar edge cases:
	variable month lengths, leap years, weeks across year boundaries and
	DST switches.

AVAILABLE SCENARIOS:

	activity:    Two years of pseudo-random daily activity
	leap-year:   Events around Feb 29 2024 and the 2023/2024 year boundary
	dst-switch:  Hourly events across the March 2024 DST switch
	sparse:      A handful of events years apart

HOW SCENARIOS WORK:
 1. Reset database (clear all events)
 2. Generate events (deterministic, fixed seed)
 3. Insert them in one batch

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "leap-year"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: event handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/warp/calendar-engine/store"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "activity",
		Name:        "Daily Activity",
		Description: "Two years of pseudo-random commits and reviews",
		Category:    "activity",
	},
	{
		ID:          "leap-year",
		Name:        "Leap Year",
		Description: "Events around Feb 29 2024 and New Year 2024",
		Category:    "calendar",
	},
	{
		ID:          "dst-switch",
		Name:        "DST Switch",
		Description: "Hourly events across the March 2024 daylight saving switch",
		Category:    "calendar",
	},
	{
		ID:          "sparse",
		Name:        "Sparse",
		Description: "A few events several years apart",
		Category:    "calendar",
	},
}

var loaders = map[string]func(loc *time.Location) []store.Event{
	"activity":   activityEvents,
	"leap-year":  leapYearEvents,
	"dst-switch": dstEvents,
	"sparse":     sparseEvents,
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.scenario()})
}

// LoadScenario resets the store and loads a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	n, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		if _, ok := loaders[req.ScenarioID]; !ok {
			writeError(w, http.StatusNotFound, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scenario_id": req.ScenarioID,
		"events":      n,
	})
}

// ResetDatabase deletes every event.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenarioByID resets the store and loads a scenario outside HTTP.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	_, err := h.loadScenario(ctx, id)
	return err
}

func (h *Handler) loadScenario(ctx context.Context, id string) (int, error) {
	load, ok := loaders[id]
	if !ok {
		return 0, fmt.Errorf("unknown scenario: %s", id)
	}
	if err := h.Store.Reset(ctx); err != nil {
		return 0, err
	}
	events := load(h.Location)
	if err := h.Store.AddBatch(ctx, events); err != nil {
		return 0, err
	}
	h.setScenario(id)
	return len(events), nil
}

func (h *Handler) scenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// GENERATORS
// =============================================================================

func activityEvents(loc *time.Location) []store.Event {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, loc)

	var events []store.Event
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		// Quieter weekends
		busy := 6
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			busy = 2
		}
		n := rng.Intn(busy)
		for i := 0; i < n; i++ {
			at := day.Add(time.Duration(8+rng.Intn(10))*time.Hour + time.Duration(rng.Intn(60))*time.Minute)
			kind := "commit"
			if rng.Intn(3) == 0 {
				kind = "review"
			}
			events = append(events, store.NewEvent("activity", fmt.Sprintf("%s #%d", kind, len(events)+1), at))
		}
	}
	return events
}

func leapYearEvents(loc *time.Location) []store.Event {
	dates := []time.Time{
		time.Date(2023, time.December, 30, 10, 0, 0, 0, loc),
		time.Date(2023, time.December, 31, 23, 59, 0, 0, loc),
		time.Date(2024, time.January, 1, 0, 0, 0, 0, loc),
		time.Date(2024, time.January, 31, 12, 0, 0, 0, loc),
		time.Date(2024, time.February, 28, 9, 0, 0, 0, loc),
		time.Date(2024, time.February, 29, 9, 0, 0, 0, loc),
		time.Date(2024, time.February, 29, 18, 0, 0, 0, loc),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, loc),
	}
	events := make([]store.Event, len(dates))
	for i, d := range dates {
		events[i] = store.NewEvent("calendar", d.Format("Mon Jan 2 15:04"), d)
	}
	return events
}

func dstEvents(loc *time.Location) []store.Event {
	start := time.Date(2024, time.March, 9, 0, 0, 0, 0, loc)
	end := time.Date(2024, time.March, 12, 0, 0, 0, 0, loc)

	var events []store.Event
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		events = append(events, store.NewEvent("calendar", t.Format("Jan 2 15:04 MST"), t))
	}
	return events
}

func sparseEvents(loc *time.Location) []store.Event {
	years := []int{2015, 2018, 2024}
	events := make([]store.Event, len(years))
	for i, y := range years {
		at := time.Date(y, time.June, 15, 12, 0, 0, 0, loc)
		events[i] = store.NewEvent("calendar", fmt.Sprintf("milestone %d", y), at)
	}
	return events
}
