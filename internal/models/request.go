package models

import "time"

// ScheduleRequest is a stored per-employee scheduling wish. Value carries a
// bare ISO date, a weekday name, or "<date-or-weekday> | <shift>" depending
// on Kind.
type ScheduleRequest struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Kind       string    `db:"kind" json:"kind"`
	Value      string    `db:"value" json:"value"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	// EmployeeName is joined from the employees table on reads.
	EmployeeName string `db:"employee_name" json:"employee_name,omitempty"`
}

// ScheduleRequestFilter captures filtering options for listing requests.
type ScheduleRequestFilter struct {
	EmployeeID string
	Kind       string
	Page       int
	PageSize   int
}
