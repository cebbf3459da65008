/*
Package factory provides JSON/YAML to Go calendar chain conversion.

PURPOSE:
  Converts calendar configuration documents into a calendar.Config plus the
  flat pager settings. Units are chained in the order they are declared in
  the document, so both parsers walk the top-level mapping in order instead
  of decoding it into a Go map.

JSON SCHEMA:
  {
    "year":  {"order": "desc", "format": "2006"},
    "month": {},
    "week":  {"week_start": "monday"},
    "day":   {"page_param": "d"},
    "pager": {"page_param": "page", "limit": 20},
    "active": true,
    "out_of_range": "clamp"
  }

  Unit keys:    order, format, page_param (+ week_start for week)
  Pager keys:   page_param, limit
  Unknown keys and non-mapping unit values fail with *calendar.ConfigError
  listing the allowed keys.

USAGE:
  f := NewChainFactory()
  settings, err := f.ParseJSON(data)
  chain, err := calendar.Build(ctx, settings.Chain, period, pages, nil)

SEE ALSO:
  - calendar/chain.go: Config type
  - api/handlers.go: serves the effective configuration
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/warp/calendar-engine/calendar"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// KEYS
// =============================================================================

const (
	keyPager      = "pager"
	keyActive     = "active"
	keyOutOfRange = "out_of_range"
)

var (
	topKeys   = []string{"year", "month", "week", "day", keyPager, keyActive, keyOutOfRange}
	unitKeys  = []string{"order", "format", "page_param"}
	weekKeys  = []string{"order", "format", "page_param", "week_start"}
	pagerKeys = []string{"page_param", "limit"}
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DefaultLimit is the flat page size when the pager omits it.
const DefaultLimit = 20

// Settings is the parsed configuration document.
type Settings struct {
	Chain calendar.Config
	Limit int
}

// entry is one top-level key in document order.
type entry struct {
	key   string
	value any
}

// =============================================================================
// FACTORY
// =============================================================================

// ChainFactory parses calendar configuration documents.
type ChainFactory struct {
	DefaultLimit int
}

// NewChainFactory creates a factory with default settings.
func NewChainFactory() *ChainFactory {
	return &ChainFactory{DefaultLimit: DefaultLimit}
}

// Load reads a configuration file, choosing the parser by extension.
func (f *ChainFactory) Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	default:
		return f.ParseJSON(data)
	}
}

// ParseJSON parses a JSON document.
func (f *ChainFactory) ParseJSON(data []byte) (*Settings, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid calendar JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &calendar.ConfigError{Field: "root", Reason: "must be an object", Allowed: topKeys}
	}

	var entries []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid calendar JSON: %w", err)
		}
		key, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid calendar JSON at %q: %w", key, err)
		}
		entries = append(entries, entry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid calendar JSON: %w", err)
	}
	return f.build(entries)
}

// ParseYAML parses a YAML document.
func (f *ChainFactory) ParseYAML(data []byte) (*Settings, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid calendar YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &calendar.ConfigError{Field: "root", Reason: "must be a mapping", Allowed: topKeys}
	}

	root := doc.Content[0]
	entries := make([]entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		var value any
		if err := root.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid calendar YAML at %q: %w", key, err)
		}
		entries = append(entries, entry{key: key, value: value})
	}
	return f.build(entries)
}

// =============================================================================
// BUILD
// =============================================================================

func (f *ChainFactory) build(entries []entry) (*Settings, error) {
	s := &Settings{Limit: f.DefaultLimit}
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if seen[e.key] {
			return nil, &calendar.ConfigError{Field: e.key, Reason: "declared more than once"}
		}
		seen[e.key] = true

		switch e.key {
		case keyActive:
			b, ok := e.value.(bool)
			if !ok {
				return nil, &calendar.ConfigError{Field: keyActive, Reason: "must be a boolean"}
			}
			s.Chain.Active = &b

		case keyOutOfRange:
			str, ok := e.value.(string)
			if !ok {
				return nil, &calendar.ConfigError{Field: keyOutOfRange, Reason: "must be a string"}
			}
			s.Chain.OutOfRange = calendar.OutOfRangePolicy(str)

		case keyPager:
			m, err := mapping(e.key, e.value, pagerKeys)
			if err != nil {
				return nil, err
			}
			if err := f.pager(m, s); err != nil {
				return nil, err
			}

		default:
			kind, err := calendar.ParseKind(e.key)
			if err != nil {
				return nil, &calendar.ConfigError{Field: e.key, Reason: "unknown key", Allowed: topKeys}
			}
			allowed := unitKeys
			if kind == calendar.KindWeek {
				allowed = weekKeys
			}
			m, err := mapping(e.key, e.value, allowed)
			if err != nil {
				return nil, err
			}
			uc, err := unit(kind, m)
			if err != nil {
				return nil, err
			}
			s.Chain.Units = append(s.Chain.Units, uc)
		}
	}

	if s.Chain.IsActive() {
		if err := s.Chain.Validate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// mapping checks that value is a mapping with allowed keys only.
func mapping(field string, value any, allowed []string) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &calendar.ConfigError{Field: field, Reason: "must be a mapping", Allowed: allowed}
	}
	for k := range m {
		if !contains(allowed, k) {
			return nil, &calendar.ConfigError{Field: field + "." + k, Reason: "unknown key", Allowed: allowed}
		}
	}
	return m, nil
}

func unit(kind calendar.Kind, m map[string]any) (calendar.UnitConfig, error) {
	uc := calendar.UnitConfig{Kind: kind}
	field := string(kind)

	var err error
	if uc.PageParam, err = stringValue(field, "page_param", m); err != nil {
		return uc, err
	}
	if uc.Format, err = stringValue(field, "format", m); err != nil {
		return uc, err
	}
	order, err := stringValue(field, "order", m)
	if err != nil {
		return uc, err
	}
	uc.Order = calendar.Order(order)

	start, err := stringValue(field, "week_start", m)
	if err != nil {
		return uc, err
	}
	if start != "" {
		wd, ok := weekdays[strings.ToLower(start)]
		if !ok {
			return uc, &calendar.ConfigError{Field: field + ".week_start", Reason: "unknown weekday " + start}
		}
		uc.WeekStart = wd
	}
	return uc, uc.Validate()
}

func (f *ChainFactory) pager(m map[string]any, s *Settings) error {
	param, err := stringValue(keyPager, "page_param", m)
	if err != nil {
		return err
	}
	s.Chain.PageParam = param

	raw, ok := m["limit"]
	if !ok {
		return nil
	}
	limit, err := intValue(raw)
	if err != nil || limit < 1 {
		return &calendar.ConfigError{Field: keyPager + ".limit", Reason: "must be a positive integer"}
	}
	s.Limit = limit
	return nil
}

func stringValue(field, key string, m map[string]any) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", nil
	}
	str, ok := raw.(string)
	if !ok {
		return "", &calendar.ConfigError{Field: field + "." + key, Reason: "must be a string"}
	}
	return str, nil
}

// intValue accepts json.Number (JSON) and int (YAML).
func intValue(raw any) (int, error) {
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("not an integer: %v", raw)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
