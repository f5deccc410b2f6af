package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shiftwise/rota-api/internal/models"
)

// RosterRepository manages persistence for saved rosters.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// List returns roster metadata matching filters along with total count. The
// JSON payload is deliberately left out of list views.
func (r *RosterRepository) List(ctx context.Context, filter models.RosterFilter) ([]models.RosterMeta, int, error) {
	base := "FROM rosters WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, label, start_date, num_days, outcome, objective, created_at %s ORDER BY start_date DESC, created_at DESC LIMIT %d OFFSET %d", base, size, offset)
	var rosters []models.RosterMeta
	if err := r.db.SelectContext(ctx, &rosters, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rosters: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rosters: %w", err)
	}

	return rosters, total, nil
}

// FindByID fetches a saved roster including its schedule payload.
func (r *RosterRepository) FindByID(ctx context.Context, id string) (*models.Roster, error) {
	const query = `SELECT id, label, start_date, num_days, outcome, objective, payload, created_at, updated_at FROM rosters WHERE id = $1`
	var roster models.Roster
	if err := r.db.GetContext(ctx, &roster, query, id); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Create inserts a saved roster.
func (r *RosterRepository) Create(ctx context.Context, roster *models.Roster) error {
	if roster.ID == "" {
		roster.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if roster.CreatedAt.IsZero() {
		roster.CreatedAt = now
	}
	roster.UpdatedAt = now

	const query = `INSERT INTO rosters (id, label, start_date, num_days, outcome, objective, payload, created_at, updated_at)
		VALUES (:id, :label, :start_date, :num_days, :outcome, :objective, :payload, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, roster); err != nil {
		return fmt.Errorf("create roster: %w", err)
	}
	return nil
}

// Delete removes a saved roster.
func (r *RosterRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM rosters WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete roster: %w", err)
	}
	return nil
}
