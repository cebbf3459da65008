package calendar

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCounts(t *testing.T) {
	var unknown Counts
	_, ok := unknown.Get(1)
	assert.False(t, ok, "nil counts are unknown")

	c := Counts{1: 3, 2: 0, 3: 9}
	n, ok := c.Get(4)
	assert.True(t, ok)
	assert.Equal(t, 0, n, "missing page has zero items")
	assert.Equal(t, 12, c.Total())
	assert.Equal(t, 9, c.Max())

	assert.True(t, decimal.RequireFromString("0.33").Equal(c.Share(1)))
	assert.True(t, decimal.NewFromInt(1).Equal(c.Share(3)))
	assert.True(t, decimal.Zero.Equal(Counts{1: 0}.Share(1)))
}
