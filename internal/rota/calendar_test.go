package rota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarDayIndexOf(t *testing.T) {
	cal := NewCalendar(time.Date(2025, 12, 22, 15, 4, 5, 0, time.UTC), 7)

	idx, ok := cal.DayIndexOf(time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = cal.DayIndexOf(time.Date(2025, 12, 28, 23, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	_, ok = cal.DayIndexOf(time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	_, ok = cal.DayIndexOf(time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestCalendarWeekdays(t *testing.T) {
	// 2025-12-22 is a Monday.
	cal := NewCalendar(time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC), 10)

	assert.Equal(t, time.Monday, cal.WeekdayOf(0))
	assert.Equal(t, time.Sunday, cal.WeekdayOf(6))

	// Ten days cover Monday and Tuesday twice.
	assert.Equal(t, []int{0, 7}, cal.DayIndicesFor(time.Monday))
	assert.Equal(t, []int{1, 8}, cal.DayIndicesFor(time.Tuesday))
	assert.Equal(t, []int{5}, cal.DayIndicesFor(time.Saturday))
}

func TestParseWeekday(t *testing.T) {
	w, ok := ParseWeekday(" Friday ")
	require.True(t, ok)
	assert.Equal(t, time.Friday, w)

	_, ok = ParseWeekday("Féria")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-12-25")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDate("25/12/2025")
	assert.False(t, ok)
}
