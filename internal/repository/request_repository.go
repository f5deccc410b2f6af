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

// ScheduleRequestRepository manages persistence for scheduling requests.
type ScheduleRequestRepository struct {
	db *sqlx.DB
}

// NewScheduleRequestRepository constructs a ScheduleRequestRepository.
func NewScheduleRequestRepository(db *sqlx.DB) *ScheduleRequestRepository {
	return &ScheduleRequestRepository{db: db}
}

const requestColumns = "r.id, r.employee_id, r.kind, r.value, r.created_at, r.updated_at, e.full_name AS employee_name"

// List returns requests matching filters along with total count. Employee
// names are joined in for display.
func (r *ScheduleRequestRepository) List(ctx context.Context, filter models.ScheduleRequestFilter) ([]models.ScheduleRequest, int, error) {
	base := "FROM schedule_requests r JOIN employees e ON e.id = r.employee_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("r.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("r.kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d", requestColumns, base, size, offset)
	var requests []models.ScheduleRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule requests: %w", err)
	}

	return requests, total, nil
}

// ListAll returns every stored request with employee names, for feeding a
// solver run.
func (r *ScheduleRequestRepository) ListAll(ctx context.Context) ([]models.ScheduleRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_requests r JOIN employees e ON e.id = r.employee_id ORDER BY r.created_at ASC", requestColumns)
	var requests []models.ScheduleRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list all schedule requests: %w", err)
	}
	return requests, nil
}

// FindByID fetches a request by ID.
func (r *ScheduleRequestRepository) FindByID(ctx context.Context, id string) (*models.ScheduleRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_requests r JOIN employees e ON e.id = r.employee_id WHERE r.id = $1", requestColumns)
	var request models.ScheduleRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a new schedule request.
func (r *ScheduleRequestRepository) Create(ctx context.Context, request *models.ScheduleRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO schedule_requests (id, employee_id, kind, value, created_at, updated_at)
		VALUES (:id, :employee_id, :kind, :value, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create schedule request: %w", err)
	}
	return nil
}

// Delete removes a schedule request.
func (r *ScheduleRequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_requests WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule request: %w", err)
	}
	return nil
}

// DeleteByEmployee removes every request referencing an employee.
func (r *ScheduleRequestRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	const query = `DELETE FROM schedule_requests WHERE employee_id = $1`
	if _, err := r.db.ExecContext(ctx, query, employeeID); err != nil {
		return fmt.Errorf("delete schedule requests for employee: %w", err)
	}
	return nil
}
