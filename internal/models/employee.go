package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/shiftwise/rota-api/internal/rota"
)

// Employee represents a rosterable staff member.
type Employee struct {
	ID              string         `db:"id" json:"id"`
	FullName        string         `db:"full_name" json:"full_name"`
	Role            string         `db:"role" json:"role"`
	EmploymentType  string         `db:"employment_type" json:"employment_type"`
	MaxWeeklyHours  float64        `db:"max_weekly_hours" json:"max_weekly_hours"`
	FlexibleHours   bool           `db:"flexible_hours" json:"flexible_hours"`
	PreferredShifts types.JSONText `db:"preferred_shifts" json:"preferred_shifts"`
	Active          bool           `db:"active" json:"active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Snapshot converts the stored record into the solver's staffing view.
// Unknown role or employment names fall back to their zero values, and a
// malformed preference column reads as no preferences.
func (e Employee) Snapshot() rota.Employee {
	role, _ := rota.ParseRole(e.Role)
	empType, _ := rota.ParseEmploymentType(e.EmploymentType)

	var names []string
	if len(e.PreferredShifts) > 0 {
		_ = json.Unmarshal(e.PreferredShifts, &names)
	}
	var preferred map[rota.ShiftType]bool
	for _, name := range names {
		s, ok := rota.ParseShiftType(name)
		if !ok {
			continue
		}
		if preferred == nil {
			preferred = make(map[rota.ShiftType]bool)
		}
		preferred[s] = true
	}

	return rota.Employee{
		ID:              e.ID,
		Name:            e.FullName,
		Role:            role,
		Type:            empType,
		MaxWeeklyHours:  e.MaxWeeklyHours,
		FlexibleHours:   e.FlexibleHours,
		PreferredShifts: preferred,
	}
}

// EmployeeFilter captures filtering options for listing employees.
type EmployeeFilter struct {
	Search    string
	Role      string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
