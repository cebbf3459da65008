/*
errors.go - Centralized error types for the calendar engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match on the sentinels with errors.Is and read details with
  errors.As on the structured types.

ERROR CATEGORIES:
  1. Configuration errors - malformed unit/chain config, missing collaborators
  2. Range errors - requested page outside [1, pages]
  3. Period errors - degenerate or missing search period

SEE ALSO:
  - unit.go: raises OutOfRangeError
  - chain.go: raises ConfigError
  - factory/chain.go: wraps ConfigError with the offending key
*/
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfig is returned for malformed unit or chain configuration and
	// for missing required collaborators. Never retried.
	ErrConfig = errors.New("invalid calendar configuration")

	// ErrOutOfRange is returned when a requested page is outside [1, pages]
	// and the chain is configured to fail rather than clamp.
	ErrOutOfRange = errors.New("page out of range")

	// ErrInvalidPeriod is returned when a period is degenerate (start >= end).
	ErrInvalidPeriod = errors.New("invalid period: start not before end")

	// ErrInvalidPage is returned when a page parameter is not an integer.
	ErrInvalidPage = errors.New("invalid page parameter")

	// ErrNoPeriod is returned by period providers when the collection is empty
	// and no search period can be derived from it.
	ErrNoPeriod = errors.New("no period available")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError describes a configuration problem.
type ConfigError struct {
	Field   string   // e.g. "month.order", "units"
	Reason  string
	Allowed []string // set of accepted keys or values, when relevant
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("calendar config %s: %s", e.Field, e.Reason)
	if len(e.Allowed) > 0 {
		msg += " (allowed: " + strings.Join(e.Allowed, ", ") + ")"
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// OutOfRangeError reports a page request that does not fit the unit.
type OutOfRangeError struct {
	Kind  Kind
	Page  int
	Pages int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s page %d out of range [1, %d]", e.Kind, e.Page, e.Pages)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

// PeriodError reports a degenerate period.
type PeriodError struct {
	Start time.Time
	End   time.Time
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("invalid period [%s, %s): start must be before end",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *PeriodError) Unwrap() error {
	return ErrInvalidPeriod
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrConfig)
}

// IsConfigError returns true if the error comes from configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsNotFound returns true if there was nothing to paginate.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoPeriod)
}
