package rota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compilerFixture(numDays int) *Compiler {
	cal := NewCalendar(time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC), numDays)
	employees := []Employee{
		{ID: "e1", Name: "Alice"},
		{ID: "e2", Name: "Bob"},
	}
	return NewCompiler(cal, employees, nil)
}

func TestCompileOffSpecificDate(t *testing.T) {
	c := compilerFixture(7)

	constraints, dropped := c.Compile([]Request{
		{StaffName: "Alice", Kind: OffSpecificDate, Value: "2025-12-25"},
	})
	require.Empty(t, dropped)
	require.Len(t, constraints, 1)
	assert.Equal(t, Constraint{EmployeeID: "e1", Day: 3}, constraints[0])
}

func TestCompileOffRecurringDayRepeats(t *testing.T) {
	c := compilerFixture(10)

	constraints, dropped := c.Compile([]Request{
		{StaffName: "Bob", Kind: OffRecurringDay, Value: "Monday"},
	})
	require.Empty(t, dropped)
	require.Len(t, constraints, 2)
	assert.Equal(t, 0, constraints[0].Day)
	assert.Equal(t, 7, constraints[1].Day)
}

func TestCompileWorkSpecificShift(t *testing.T) {
	c := compilerFixture(7)

	constraints, dropped := c.Compile([]Request{
		{StaffName: "alice", Kind: WorkSpecificShift, Value: "2025-12-24 | Peak Lunch"},
	})
	require.Empty(t, dropped)
	require.Len(t, constraints, 1)
	assert.Equal(t, Constraint{EmployeeID: "e1", Day: 2, ForceOn: true, Shift: ShiftPeakLunch}, constraints[0])
}

func TestCompileWorkRecurringShift(t *testing.T) {
	c := compilerFixture(7)

	constraints, dropped := c.Compile([]Request{
		{StaffName: "Bob", Kind: WorkRecurringShift, Value: "Wednesday | Closing"},
	})
	require.Empty(t, dropped)
	require.Len(t, constraints, 1)
	assert.Equal(t, Constraint{EmployeeID: "e2", Day: 2, ForceOn: true, Shift: ShiftClosing}, constraints[0])
}

func TestCompileLenientDrops(t *testing.T) {
	c := compilerFixture(7)

	cases := []struct {
		name   string
		req    Request
		reason string
	}{
		{"unknown employee", Request{StaffName: "Mallory", Kind: OffSpecificDate, Value: "2025-12-23"}, "unknown employee"},
		{"garbled date", Request{StaffName: "Alice", Kind: OffSpecificDate, Value: "sometime"}, "unparseable date"},
		{"out of period", Request{StaffName: "Alice", Kind: OffSpecificDate, Value: "2026-03-01"}, "date outside roster period"},
		{"bad weekday", Request{StaffName: "Alice", Kind: OffRecurringDay, Value: "Caturday"}, "unparseable weekday"},
		{"missing delimiter", Request{StaffName: "Alice", Kind: WorkSpecificShift, Value: "2025-12-23 Opening"}, "unparseable shift value"},
		{"unknown shift", Request{StaffName: "Alice", Kind: WorkRecurringShift, Value: "Monday | Graveyard"}, "unparseable shift value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			constraints, dropped := c.Compile([]Request{tc.req})
			assert.Empty(t, constraints)
			require.Len(t, dropped, 1)
			assert.Equal(t, tc.reason, dropped[0].Reason)
		})
	}
}

func TestCompileContradictionPassesThrough(t *testing.T) {
	c := compilerFixture(7)

	constraints, dropped := c.Compile([]Request{
		{StaffName: "Alice", Kind: OffSpecificDate, Value: "2025-12-23"},
		{StaffName: "Alice", Kind: WorkSpecificShift, Value: "2025-12-23 | Opening"},
	})
	require.Empty(t, dropped)
	// Both survive; the solver reports the contradiction as infeasibility.
	require.Len(t, constraints, 2)
	assert.False(t, constraints[0].ForceOn)
	assert.True(t, constraints[1].ForceOn)
}
