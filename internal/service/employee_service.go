package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/rota"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByName(ctx context.Context, fullName, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Deactivate(ctx context.Context, id string) error
}

type employeeRequestCleaner interface {
	DeleteByEmployee(ctx context.Context, employeeID string) error
}

// CreateEmployeeRequest represents payload for creating employees.
type CreateEmployeeRequest struct {
	FullName        string   `json:"full_name" validate:"required,min=2,max=120"`
	Role            string   `json:"role" validate:"required,oneof=Staff Manager GeneralManager"`
	EmploymentType  string   `json:"employment_type" validate:"required,oneof=FullTime PartTime"`
	MaxWeeklyHours  float64  `json:"max_weekly_hours" validate:"required,gt=0,lte=80"`
	FlexibleHours   bool     `json:"flexible_hours"`
	PreferredShifts []string `json:"preferred_shifts" validate:"omitempty,max=5"`
}

// UpdateEmployeeRequest represents payload for updating employees.
type UpdateEmployeeRequest struct {
	FullName        string   `json:"full_name" validate:"required,min=2,max=120"`
	Role            string   `json:"role" validate:"required,oneof=Staff Manager GeneralManager"`
	EmploymentType  string   `json:"employment_type" validate:"required,oneof=FullTime PartTime"`
	MaxWeeklyHours  float64  `json:"max_weekly_hours" validate:"required,gt=0,lte=80"`
	FlexibleHours   bool     `json:"flexible_hours"`
	PreferredShifts []string `json:"preferred_shifts" validate:"omitempty,max=5"`
	Active          *bool    `json:"active"`
}

// EmployeeService orchestrates employee operations.
type EmployeeService struct {
	repo      employeeRepository
	requests  employeeRequestCleaner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, requests employeeRequestCleaner, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, requests: requests, validator: validate, logger: logger}
}

// List returns employees plus pagination data.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return employees, pagination, nil
}

// Get returns an employee by id.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create registers a new employee record.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	preferred, err := canonicalShiftNames(req.PreferredShifts)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if err := s.ensureUniqueName(ctx, fullName, ""); err != nil {
		return nil, err
	}

	employee := &models.Employee{
		FullName:        fullName,
		Role:            req.Role,
		EmploymentType:  req.EmploymentType,
		MaxWeeklyHours:  req.MaxWeeklyHours,
		FlexibleHours:   req.FlexibleHours,
		PreferredShifts: preferred,
		Active:          true,
	}

	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return employee, nil
}

// Update modifies an existing employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	preferred, err := canonicalShiftNames(req.PreferredShifts)
	if err != nil {
		return nil, err
	}

	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	fullName := strings.TrimSpace(req.FullName)
	if err := s.ensureUniqueName(ctx, fullName, id); err != nil {
		return nil, err
	}

	employee.FullName = fullName
	employee.Role = req.Role
	employee.EmploymentType = req.EmploymentType
	employee.MaxWeeklyHours = req.MaxWeeklyHours
	employee.FlexibleHours = req.FlexibleHours
	employee.PreferredShifts = preferred
	if req.Active != nil {
		employee.Active = *req.Active
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// Deactivate marks an employee inactive and clears their pending requests.
func (s *EmployeeService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employee")
	}
	if s.requests != nil {
		if err := s.requests.DeleteByEmployee(ctx, id); err != nil {
			s.logger.Warn("failed to clear schedule requests for deactivated employee",
				zap.String("employee_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *EmployeeService) ensureUniqueName(ctx context.Context, fullName, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, fullName, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "an employee with this name already exists")
	}
	return nil
}

// canonicalShiftNames resolves user-supplied shift names to their catalog
// spelling and encodes them for storage.
func canonicalShiftNames(names []string) (types.JSONText, error) {
	canonical := make([]string, 0, len(names))
	seen := make(map[rota.ShiftType]bool, len(names))
	for _, name := range names {
		shift, ok := rota.ParseShiftType(name)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown shift type: "+name)
		}
		if seen[shift] {
			continue
		}
		seen[shift] = true
		canonical = append(canonical, shift.String())
	}
	payload, err := json.Marshal(canonical)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode preferred shifts")
	}
	return types.JSONText(payload), nil
}
