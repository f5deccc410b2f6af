package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Roster is a saved schedule for one period, with the full schedule table
// persisted as a JSON payload.
type Roster struct {
	ID        string         `db:"id" json:"id"`
	Label     string         `db:"label" json:"label"`
	StartDate time.Time      `db:"start_date" json:"start_date"`
	NumDays   int            `db:"num_days" json:"num_days"`
	Outcome   string         `db:"outcome" json:"outcome"`
	Objective int64          `db:"objective" json:"objective"`
	Payload   types.JSONText `db:"payload" json:"payload"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// RosterMeta is the lightweight list view of a saved roster, without payload.
type RosterMeta struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	NumDays   int       `db:"num_days" json:"num_days"`
	Outcome   string    `db:"outcome" json:"outcome"`
	Objective int64     `db:"objective" json:"objective"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RosterFilter captures filtering options for listing saved rosters.
type RosterFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
