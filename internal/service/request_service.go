package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/rota"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type scheduleRequestRepository interface {
	List(ctx context.Context, filter models.ScheduleRequestFilter) ([]models.ScheduleRequest, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleRequest, error)
	Create(ctx context.Context, request *models.ScheduleRequest) error
	Delete(ctx context.Context, id string) error
}

type requestEmployeeReader interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// CreateScheduleRequestRequest represents payload for recording a scheduling wish.
type CreateScheduleRequestRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid4"`
	Kind       string `json:"kind" validate:"required,oneof=OFF_SPECIFIC_DATE OFF_RECURRING_DAY WORK_SPECIFIC_SHIFT WORK_RECURRING_SHIFT"`
	Value      string `json:"value" validate:"required,min=1,max=64"`
}

// ScheduleRequestService orchestrates scheduling request operations.
type ScheduleRequestService struct {
	repo      scheduleRequestRepository
	employees requestEmployeeReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleRequestService constructs a ScheduleRequestService.
func NewScheduleRequestService(repo scheduleRequestRepository, employees requestEmployeeReader, validate *validator.Validate, logger *zap.Logger) *ScheduleRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleRequestService{repo: repo, employees: employees, validator: validate, logger: logger}
}

// List returns scheduling requests plus pagination data.
func (s *ScheduleRequestService) List(ctx context.Context, filter models.ScheduleRequestFilter) ([]models.ScheduleRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule requests")
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
	return requests, pagination, nil
}

// Create records a scheduling wish after checking the employee exists and the
// value parses for the given kind. Period-dependent checks (is the date inside
// the roster window) are deferred to generation time.
func (s *ScheduleRequestService) Create(ctx context.Context, req CreateScheduleRequestRequest) (*models.ScheduleRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request payload")
	}

	employee, err := s.employees.FindByID(ctx, req.EmployeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if !employee.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "employee is inactive")
	}

	kind, _ := rota.ParseRequestKind(req.Kind)
	value := strings.TrimSpace(req.Value)
	if err := validateRequestValue(kind, value); err != nil {
		return nil, err
	}

	request := &models.ScheduleRequest{
		EmployeeID: req.EmployeeID,
		Kind:       kind.String(),
		Value:      value,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule request")
	}
	request.EmployeeName = employee.FullName
	return request, nil
}

// Delete removes a scheduling request.
func (s *ScheduleRequestService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule request")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule request")
	}
	return nil
}

// validateRequestValue rejects values that could never compile, so bad input
// fails loudly at entry instead of silently dropping at generation time.
func validateRequestValue(kind rota.RequestKind, value string) error {
	switch kind {
	case rota.OffSpecificDate:
		if _, ok := rota.ParseDate(value); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "value must be an ISO date (YYYY-MM-DD)")
		}
	case rota.OffRecurringDay:
		if _, ok := rota.ParseWeekday(value); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "value must be a weekday name")
		}
	case rota.WorkSpecificShift, rota.WorkRecurringShift:
		parts := strings.SplitN(value, "|", 2)
		if len(parts) != 2 {
			return appErrors.Clone(appErrors.ErrValidation, `value must look like "<date or weekday> | <shift>"`)
		}
		if _, ok := rota.ParseShiftType(parts[1]); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown shift type: "+strings.TrimSpace(parts[1]))
		}
		target := strings.TrimSpace(parts[0])
		if kind == rota.WorkSpecificShift {
			if _, ok := rota.ParseDate(target); !ok {
				return appErrors.Clone(appErrors.ErrValidation, "value must start with an ISO date (YYYY-MM-DD)")
			}
		} else {
			if _, ok := rota.ParseWeekday(target); !ok {
				return appErrors.Clone(appErrors.ErrValidation, "value must start with a weekday name")
			}
		}
	}
	return nil
}
