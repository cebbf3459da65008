package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/calendar-engine/calendar"
)

func withUTC(t *testing.T) {
	t.Helper()
	prevTZ, prevConfig := timezone, configPath
	timezone, configPath = "UTC", ""
	t.Cleanup(func() { timezone, configPath = prevTZ, prevConfig })
}

func TestRunChain(t *testing.T) {
	withUTC(t)
	var out bytes.Buffer

	err := runChain(context.Background(), &out, chainOptions{
		from:  "2024-01-15",
		to:    "2024-03-10",
		units: []string{"year", "month"},
		pages: []string{"month_page=2"},
		all:   true,
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "month 2/12  [2024-02-01, 2024-03-01)")
	assert.Contains(t, got, "resets month_page, page")
	assert.Contains(t, got, "2024-02")
	assert.Contains(t, got, "window [2024-02-01, 2024-03-01)")
}

func TestRunChain_At(t *testing.T) {
	withUTC(t)
	var out bytes.Buffer

	err := runChain(context.Background(), &out, chainOptions{
		from:  "2024-01-01",
		to:    "2025-01-01",
		units: []string{"month", "day"},
		at:    "2024-02-29",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "window [2024-02-29, 2024-03-01)")
}

func TestRunChain_Config(t *testing.T) {
	withUTC(t)
	configPath = filepath.Join(t.TempDir(), "calendar.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("week:\n  week_start: monday\n"), 0o644))

	var out bytes.Buffer
	err := runChain(context.Background(), &out, chainOptions{from: "2024-01-03", to: "2024-01-20"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "week 1/3  [2024-01-01, 2024-01-08)")
}

func TestRunChain_Errors(t *testing.T) {
	withUTC(t)
	tests := []struct {
		name string
		opts chainOptions
		want error
	}{
		{"reversed period", chainOptions{from: "2024-02-01", to: "2024-01-01", units: []string{"day"}}, calendar.ErrInvalidPeriod},
		{"out of range", chainOptions{from: "2024-01-01", to: "2024-01-04", units: []string{"day"}, pages: []string{"day_page=4"}}, calendar.ErrOutOfRange},
		{"bad page", chainOptions{from: "2024-01-01", to: "2024-01-04", units: []string{"day"}, pages: []string{"day_page=x"}}, calendar.ErrInvalidPage},
		{"unknown unit", chainOptions{from: "2024-01-01", to: "2024-01-04", units: []string{"decade"}}, calendar.ErrConfig},
		{"quoted unit", chainOptions{from: "2024-01-01", to: "2024-01-04", units: []string{`day"`}}, calendar.ErrConfig},
		{"repeated unit", chainOptions{from: "2024-01-01", to: "2024-01-04", units: []string{"day", "day"}}, calendar.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runChain(context.Background(), &bytes.Buffer{}, tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	err := runChain(context.Background(), &bytes.Buffer{}, chainOptions{
		from: "2024-01-01", to: "2024-01-04", units: []string{"day"},
		pages: []string{"day_page=2"}, at: "2024-01-03",
	})
	assert.ErrorContains(t, err, "--at and --page")

	err = runChain(context.Background(), &bytes.Buffer{}, chainOptions{from: "yesterday", to: "2024-01-04", units: []string{"day"}})
	assert.ErrorContains(t, err, "invalid --from")
}

func TestParsePages(t *testing.T) {
	pages, err := parsePages([]string{"year_page=2", "day_page=31"})
	require.NoError(t, err)
	assert.Equal(t, calendar.PageMap{"year_page": 2, "day_page": 31}, pages)

	_, err = parsePages([]string{"year_page"})
	assert.Error(t, err)
}
