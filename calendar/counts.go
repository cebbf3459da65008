package calendar

import (
	"github.com/shopspring/decimal"
)

// Counts maps a page number to the number of items in its interval.
//
// A nil Counts means no counter was configured: renderers must show
// "unknown", not zero. A page missing from a non-nil Counts has zero items.
type Counts map[int]int

// Get returns the count of page and whether counts are known at all.
func (c Counts) Get(page int) (int, bool) {
	if c == nil {
		return 0, false
	}
	return c[page], true
}

func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

func (c Counts) Max() int {
	m := 0
	for _, n := range c {
		m = max(m, n)
	}
	return m
}

// Share returns the count of page relative to the busiest page, in [0, 1]
// rounded to two places. Used to shade activity indicators.
func (c Counts) Share(page int) decimal.Decimal {
	top := c.Max()
	if top == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(c[page])).
		Div(decimal.NewFromInt(int64(top))).
		Round(2)
}
