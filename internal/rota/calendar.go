package rota

import (
	"strings"
	"time"
)

// Calendar maps a roster period's start date and length onto day indices.
// Built once per solve and immutable afterwards.
type Calendar struct {
	start   time.Time
	numDays int
}

// NewCalendar normalizes the start date to midnight UTC and fixes the period
// length. numDays below one is clamped to one.
func NewCalendar(start time.Time, numDays int) *Calendar {
	if numDays < 1 {
		numDays = 1
	}
	y, m, d := start.Date()
	return &Calendar{
		start:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		numDays: numDays,
	}
}

// NumDays returns the period length in days.
func (c *Calendar) NumDays() int {
	return c.numDays
}

// StartDate returns the normalized first day of the period.
func (c *Calendar) StartDate() time.Time {
	return c.start
}

// DateOf returns the calendar date of a day index.
func (c *Calendar) DateOf(day int) time.Time {
	return c.start.AddDate(0, 0, day)
}

// WeekdayOf returns the weekday of a day index.
func (c *Calendar) WeekdayOf(day int) time.Weekday {
	return c.DateOf(day).Weekday()
}

// DayIndexOf maps a date back to its day index. The second return value is
// false when the date falls outside the period.
func (c *Calendar) DayIndexOf(date time.Time) (int, bool) {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	idx := int(day.Sub(c.start).Hours() / 24)
	if idx < 0 || idx >= c.numDays {
		return 0, false
	}
	return idx, true
}

// DayIndicesFor returns every day index falling on the given weekday, in
// order. More than one index is returned when the period spans over a week.
func (c *Calendar) DayIndicesFor(w time.Weekday) []int {
	var indices []int
	for day := 0; day < c.numDays; day++ {
		if c.WeekdayOf(day) == w {
			indices = append(indices, day)
		}
	}
	return indices
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a weekday name, case-insensitively.
func ParseWeekday(name string) (time.Weekday, bool) {
	w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return w, ok
}

// ParseDate parses a bare ISO date (YYYY-MM-DD).
func ParseDate(raw string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
