package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(date(2024, time.January, 1), date(2024, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, p.Duration())
	assert.True(t, p.Contains(date(2024, time.January, 1)))
	assert.False(t, p.Contains(date(2024, time.January, 2)), "end is exclusive")

	_, err = NewPeriod(date(2024, time.January, 2), date(2024, time.January, 2))
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	var perr *PeriodError
	_, err = NewPeriod(date(2024, time.January, 3), date(2024, time.January, 2))
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, date(2024, time.January, 3), perr.Start)
}
