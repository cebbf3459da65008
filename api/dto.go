/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the calendar model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TIME FORMAT:
  All instants are RFC 3339 in the server's calendar location.

SEE ALSO:
  - handlers.go: Uses these types
  - calendar/unit.go: Unit fields mirrored by UnitDTO
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/calendar-engine/pager"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventDTO represents an event in API responses.
type EventDTO struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	OccurredAt string `json:"occurred_at"`
	CreatedAt  string `json:"created_at"`
}

// CreateEventRequest is the body of POST /api/events.
// OccurredAt accepts RFC 3339 or a bare YYYY-MM-DD date.
type CreateEventRequest struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	OccurredAt string `json:"occurred_at"`
}

// EventsResponse is the body of GET /api/events.
type EventsResponse struct {
	Calendar   []UnitDTO  `json:"calendar,omitempty"`
	From       string     `json:"from,omitempty"`
	To         string     `json:"to,omitempty"`
	Events     []EventDTO `json:"events"`
	Pagination pager.Meta `json:"pagination"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// UnitDTO is one level of the calendar.
type UnitDTO struct {
	Kind      string    `json:"kind"`
	Order     string    `json:"order"`
	PageParam string    `json:"page_param"`
	Pages     int       `json:"pages"`
	Page      int       `json:"page"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Label     string    `json:"label"`
	Prev      *LinkDTO  `json:"prev,omitempty"`
	Next      *LinkDTO  `json:"next,omitempty"`
	Series    []PageDTO `json:"series"`
}

// PageDTO is one selectable page of a unit. Count and Share are omitted when
// counts are unknown.
type PageDTO struct {
	Page   int              `json:"page"`
	Label  string           `json:"label"`
	From   string           `json:"from"`
	To     string           `json:"to"`
	Link   string           `json:"link"`
	Active bool             `json:"active,omitempty"`
	Count  *int             `json:"count,omitempty"`
	Share  *decimal.Decimal `json:"share,omitempty"`
}

// LinkDTO points at another page of a unit.
type LinkDTO struct {
	Page  int    `json:"page"`
	Label string `json:"label"`
	Link  string `json:"link"`
}

// CalendarConfigDTO is the effective calendar configuration.
type CalendarConfigDTO struct {
	Active     bool            `json:"active"`
	PageParam  string          `json:"page_param"`
	Limit      int             `json:"limit"`
	OutOfRange string          `json:"out_of_range"`
	Location   string          `json:"location"`
	Units      []UnitConfigDTO `json:"units"`
}

// UnitConfigDTO is the configuration of one unit.
type UnitConfigDTO struct {
	Kind      string `json:"kind"`
	Order     string `json:"order"`
	Format    string `json:"format"`
	PageParam string `json:"page_param"`
	WeekStart string `json:"week_start,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
