package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/models"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type mockEmployeeRepo struct {
	employees   map[string]*models.Employee
	deactivated []string
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*models.Employee)}
}

func (m *mockEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	out := make([]models.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		out = append(out, *employee)
	}
	return out, len(out), nil
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return employee, nil
}

func (m *mockEmployeeRepo) ExistsByName(ctx context.Context, fullName, excludeID string) (bool, error) {
	for _, employee := range m.employees {
		if employee.FullName == fullName && employee.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEmployeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = "emp-1"
	}
	m.employees[employee.ID] = employee
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	m.employees[employee.ID] = employee
	return nil
}

func (m *mockEmployeeRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if employee, ok := m.employees[id]; ok {
		employee.Active = false
	}
	return nil
}

type mockRequestCleaner struct {
	cleared []string
	err     error
}

func (m *mockRequestCleaner) DeleteByEmployee(ctx context.Context, employeeID string) error {
	m.cleared = append(m.cleared, employeeID)
	return m.err
}

func TestEmployeeServiceCreate(t *testing.T) {
	repo := newMockEmployeeRepo()
	svc := NewEmployeeService(repo, &mockRequestCleaner{}, validator.New(), zap.NewNop())

	employee, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:        "  Greta Svensson  ",
		Role:            "Manager",
		EmploymentType:  "FullTime",
		MaxWeeklyHours:  40,
		PreferredShifts: []string{"opening", "CLOSING", "Opening"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Greta Svensson", employee.FullName)
	assert.True(t, employee.Active)
	assert.JSONEq(t, `["Opening","Closing"]`, string(employee.PreferredShifts))
}

func TestEmployeeServiceCreateUnknownShift(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:        "Marco Rossi",
		Role:            "Staff",
		EmploymentType:  "PartTime",
		MaxWeeklyHours:  20,
		PreferredShifts: []string{"Graveyard"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceCreateDuplicateName(t *testing.T) {
	repo := newMockEmployeeRepo()
	repo.employees["e1"] = &models.Employee{ID: "e1", FullName: "Greta Svensson"}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:       "Greta Svensson",
		Role:           "Staff",
		EmploymentType: "FullTime",
		MaxWeeklyHours: 40,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceCreateRejectsBadRole(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:       "Marco Rossi",
		Role:           "Janitor",
		EmploymentType: "FullTime",
		MaxWeeklyHours: 40,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceUpdate(t *testing.T) {
	repo := newMockEmployeeRepo()
	repo.employees["e1"] = &models.Employee{ID: "e1", FullName: "Greta Svensson", Role: "Manager", EmploymentType: "FullTime", MaxWeeklyHours: 40, Active: true}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	inactive := false
	employee, err := svc.Update(context.Background(), "e1", UpdateEmployeeRequest{
		FullName:       "Greta Svensson",
		Role:           "GeneralManager",
		EmploymentType: "FullTime",
		MaxWeeklyHours: 45,
		Active:         &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "GeneralManager", employee.Role)
	assert.Equal(t, 45.0, employee.MaxWeeklyHours)
	assert.False(t, employee.Active)
}

func TestEmployeeServiceDeactivateClearsRequests(t *testing.T) {
	repo := newMockEmployeeRepo()
	repo.employees["e1"] = &models.Employee{ID: "e1", FullName: "Greta Svensson", Active: true}
	cleaner := &mockRequestCleaner{}
	svc := NewEmployeeService(repo, cleaner, validator.New(), zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "e1"))
	assert.Equal(t, []string{"e1"}, repo.deactivated)
	assert.Equal(t, []string{"e1"}, cleaner.cleared)
}

func TestEmployeeServiceDeactivateSurvivesCleanerFailure(t *testing.T) {
	repo := newMockEmployeeRepo()
	repo.employees["e1"] = &models.Employee{ID: "e1", FullName: "Greta Svensson", Active: true}
	cleaner := &mockRequestCleaner{err: errors.New("boom")}
	svc := NewEmployeeService(repo, cleaner, validator.New(), zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "e1"))
	assert.False(t, repo.employees["e1"].Active)
}

func TestEmployeeServiceGetMissing(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
