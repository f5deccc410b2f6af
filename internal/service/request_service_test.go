package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/models"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type mockScheduleRequestRepo struct {
	requests map[string]*models.ScheduleRequest
	deleted  []string
}

func newMockScheduleRequestRepo() *mockScheduleRequestRepo {
	return &mockScheduleRequestRepo{requests: make(map[string]*models.ScheduleRequest)}
}

func (m *mockScheduleRequestRepo) List(ctx context.Context, filter models.ScheduleRequestFilter) ([]models.ScheduleRequest, int, error) {
	out := make([]models.ScheduleRequest, 0, len(m.requests))
	for _, request := range m.requests {
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (m *mockScheduleRequestRepo) FindByID(ctx context.Context, id string) (*models.ScheduleRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return request, nil
}

func (m *mockScheduleRequestRepo) Create(ctx context.Context, request *models.ScheduleRequest) error {
	if request.ID == "" {
		request.ID = "req-1"
	}
	m.requests[request.ID] = request
	return nil
}

func (m *mockScheduleRequestRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.requests, id)
	return nil
}

type mockEmployeeReader struct {
	employees map[string]*models.Employee
}

func (m *mockEmployeeReader) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return employee, nil
}

const testEmployeeID = "8c6c9f2e-3c86-4df6-9a39-2f0d69c8b9f1"

func newRequestServiceForTest(active bool) (*ScheduleRequestService, *mockScheduleRequestRepo) {
	repo := newMockScheduleRequestRepo()
	employees := &mockEmployeeReader{employees: map[string]*models.Employee{
		testEmployeeID: {ID: testEmployeeID, FullName: "Greta Svensson", Active: active},
	}}
	return NewScheduleRequestService(repo, employees, validator.New(), zap.NewNop()), repo
}

func TestScheduleRequestCreateOffDate(t *testing.T) {
	svc, repo := newRequestServiceForTest(true)

	request, err := svc.Create(context.Background(), CreateScheduleRequestRequest{
		EmployeeID: testEmployeeID,
		Kind:       "OFF_SPECIFIC_DATE",
		Value:      "2025-12-24",
	})
	require.NoError(t, err)
	assert.Equal(t, "Greta Svensson", request.EmployeeName)
	assert.Len(t, repo.requests, 1)
}

func TestScheduleRequestCreateWorkShift(t *testing.T) {
	svc, _ := newRequestServiceForTest(true)

	request, err := svc.Create(context.Background(), CreateScheduleRequestRequest{
		EmployeeID: testEmployeeID,
		Kind:       "WORK_RECURRING_SHIFT",
		Value:      "Tuesday | Opening",
	})
	require.NoError(t, err)
	assert.Equal(t, "WORK_RECURRING_SHIFT", request.Kind)
}

func TestScheduleRequestCreateValueShape(t *testing.T) {
	svc, _ := newRequestServiceForTest(true)

	cases := []struct {
		name  string
		kind  string
		value string
	}{
		{"off date not a date", "OFF_SPECIFIC_DATE", "next friday"},
		{"off day not a weekday", "OFF_RECURRING_DAY", "2025-12-24"},
		{"work shift missing separator", "WORK_SPECIFIC_SHIFT", "2025-12-24 Opening"},
		{"work shift unknown shift", "WORK_SPECIFIC_SHIFT", "2025-12-24 | Graveyard"},
		{"work shift bad date", "WORK_SPECIFIC_SHIFT", "Tuesday | Opening"},
		{"recurring shift bad weekday", "WORK_RECURRING_SHIFT", "2025-12-24 | Opening"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateScheduleRequestRequest{
				EmployeeID: testEmployeeID,
				Kind:       tc.kind,
				Value:      tc.value,
			})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestScheduleRequestCreateUnknownEmployee(t *testing.T) {
	svc, _ := newRequestServiceForTest(true)

	_, err := svc.Create(context.Background(), CreateScheduleRequestRequest{
		EmployeeID: "0d4e3f6a-0000-4000-8000-000000000000",
		Kind:       "OFF_RECURRING_DAY",
		Value:      "Monday",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleRequestCreateInactiveEmployee(t *testing.T) {
	svc, _ := newRequestServiceForTest(false)

	_, err := svc.Create(context.Background(), CreateScheduleRequestRequest{
		EmployeeID: testEmployeeID,
		Kind:       "OFF_RECURRING_DAY",
		Value:      "Monday",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestScheduleRequestDelete(t *testing.T) {
	svc, repo := newRequestServiceForTest(true)
	repo.requests["req-9"] = &models.ScheduleRequest{ID: "req-9", EmployeeID: testEmployeeID, Kind: "OFF_RECURRING_DAY", Value: "Monday"}

	require.NoError(t, svc.Delete(context.Background(), "req-9"))
	assert.Equal(t, []string{"req-9"}, repo.deleted)

	err := svc.Delete(context.Background(), "req-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
