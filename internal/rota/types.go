package rota

import (
	"strings"
	"time"
)

// Role is the closed set of staffing roles with rule-relevant behaviour.
type Role int

const (
	RoleStaff Role = iota
	RoleManager
	RoleGeneralManager
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "Manager"
	case RoleGeneralManager:
		return "GeneralManager"
	default:
		return "Staff"
	}
}

// IsManagerial reports whether the role satisfies manager-coverage rules.
func (r Role) IsManagerial() bool {
	return r == RoleManager || r == RoleGeneralManager
}

// ParseRole resolves a role name, case-insensitively.
func ParseRole(name string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "staff":
		return RoleStaff, true
	case "manager":
		return RoleManager, true
	case "generalmanager", "general manager":
		return RoleGeneralManager, true
	}
	return RoleStaff, false
}

// EmploymentType distinguishes full-time from part-time contracts.
type EmploymentType int

const (
	FullTime EmploymentType = iota
	PartTime
)

func (e EmploymentType) String() string {
	if e == PartTime {
		return "PartTime"
	}
	return "FullTime"
}

// ParseEmploymentType resolves an employment type name, case-insensitively.
func ParseEmploymentType(name string) (EmploymentType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fulltime", "full time":
		return FullTime, true
	case "parttime", "part time":
		return PartTime, true
	}
	return FullTime, false
}

// Employee is the read-only staffing snapshot one solve call works from.
type Employee struct {
	ID              string
	Name            string
	Role            Role
	Type            EmploymentType
	MaxWeeklyHours  float64
	FlexibleHours   bool
	PreferredShifts map[ShiftType]bool
}

// Prefers reports whether the employee listed the shift as preferred.
func (e Employee) Prefers(s ShiftType) bool {
	return e.PreferredShifts[s]
}

// Period describes the roster horizon. ClosingStaff and DailyBudgets hold one
// value per weekday slot, aligned to the period's first day and applied
// cyclically (index = day mod 7) when the period spans more than a week.
type Period struct {
	StartDate    time.Time
	NumDays      int
	ClosingStaff [7]int
	DailyBudgets [7]float64
}

// ClosingStaffFor returns the required closing headcount for a day index.
func (p Period) ClosingStaffFor(day int) int {
	return p.ClosingStaff[day%7]
}

// BudgetTenthsFor returns the labor budget for a day index in tenths of an hour.
func (p Period) BudgetTenthsFor(day int) int64 {
	return int64(p.DailyBudgets[day%7]*10 + 0.5)
}
