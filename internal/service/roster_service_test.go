package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/dto"
	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/rota"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type mockRosterEmployees struct {
	employees []models.Employee
}

func (m *mockRosterEmployees) ListActive(ctx context.Context) ([]models.Employee, error) {
	return m.employees, nil
}

type mockRosterRequests struct {
	requests []models.ScheduleRequest
}

func (m *mockRosterRequests) ListAll(ctx context.Context) ([]models.ScheduleRequest, error) {
	return m.requests, nil
}

type mockRosterRepo struct {
	rosters map[string]*models.Roster
	deleted []string
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{rosters: make(map[string]*models.Roster)}
}

func (m *mockRosterRepo) List(ctx context.Context, filter models.RosterFilter) ([]models.RosterMeta, int, error) {
	out := make([]models.RosterMeta, 0, len(m.rosters))
	for _, roster := range m.rosters {
		out = append(out, models.RosterMeta{ID: roster.ID, Label: roster.Label, StartDate: roster.StartDate, NumDays: roster.NumDays, Outcome: roster.Outcome, Objective: roster.Objective})
	}
	return out, len(out), nil
}

func (m *mockRosterRepo) FindByID(ctx context.Context, id string) (*models.Roster, error) {
	roster, ok := m.rosters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return roster, nil
}

func (m *mockRosterRepo) Create(ctx context.Context, roster *models.Roster) error {
	if roster.ID == "" {
		roster.ID = "roster-1"
	}
	roster.CreatedAt = time.Now().UTC()
	m.rosters[roster.ID] = roster
	return nil
}

func (m *mockRosterRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.rosters, id)
	return nil
}

type mockSolveObserver struct {
	outcomes []string
}

func (m *mockSolveObserver) ObserveSolve(outcome string, duration time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

func rosterTestCrew() []models.Employee {
	staff := func(id, name string, flexible bool) models.Employee {
		return models.Employee{
			ID: id, FullName: name, Role: "Staff", EmploymentType: "FullTime",
			MaxWeeklyHours: 40, FlexibleHours: flexible, Active: true,
		}
	}
	return []models.Employee{
		{ID: "e1", FullName: "Greta Svensson", Role: "Manager", EmploymentType: "FullTime", MaxWeeklyHours: 40, Active: true},
		{ID: "e2", FullName: "Marco Rossi", Role: "Manager", EmploymentType: "FullTime", MaxWeeklyHours: 40, Active: true},
		{ID: "e3", FullName: "Priya Nair", Role: "GeneralManager", EmploymentType: "FullTime", MaxWeeklyHours: 40, Active: true},
		staff("e4", "Alice Jones", false),
		staff("e5", "Bob Miller", true),
		staff("e6", "Carol White", false),
		staff("e7", "Dan Brown", false),
		staff("e8", "Eve Black", false),
		staff("e9", "Frank Green", true),
	}
}

func generatePayload() dto.GenerateRosterRequest {
	return dto.GenerateRosterRequest{
		StartDate:    "2025-12-22",
		NumDays:      1,
		ClosingStaff: []int{3, 3, 3, 3, 3, 3, 3},
		DailyBudgets: []float64{80, 80, 80, 80, 80, 80, 80},
	}
}

func newRosterServiceForTest(employees []models.Employee, requests []models.ScheduleRequest, repo *mockRosterRepo, metrics *mockSolveObserver) *RosterService {
	var observer solveObserver
	if metrics != nil {
		observer = metrics
	}
	return NewRosterService(
		&mockRosterEmployees{employees: employees},
		&mockRosterRequests{requests: requests},
		repo,
		nil,
		observer,
		validator.New(),
		zap.NewNop(),
		RosterConfig{TimeLimit: 5 * time.Second},
	)
}

func TestRosterServiceGenerate(t *testing.T) {
	metrics := &mockSolveObserver{}
	svc := newRosterServiceForTest(rosterTestCrew(), nil, newMockRosterRepo(), metrics)

	res, err := svc.Generate(context.Background(), generatePayload())
	require.NoError(t, err)
	require.NotNil(t, res.Schedule)
	assert.NotEmpty(t, res.ProposalID)
	assert.Len(t, res.Schedule.Rows, 9)
	assert.Equal(t, 1, res.Schedule.NumDays)
	assert.Empty(t, res.DroppedRequests)
	require.Len(t, metrics.outcomes, 1)

	// Every core shift on the single day must be staffed.
	counts := map[rota.ShiftType]int{}
	for _, row := range res.Schedule.Rows {
		if row.Shifts[0] != rota.ShiftNone {
			counts[row.Shifts[0]]++
		}
	}
	assert.Equal(t, 3, counts[rota.ShiftOpening])
	assert.Equal(t, 2, counts[rota.ShiftMiddle])
	assert.Equal(t, 3, counts[rota.ShiftClosing])
}

func TestRosterServiceGenerateReportsDroppedRequests(t *testing.T) {
	requests := []models.ScheduleRequest{
		{ID: "r1", EmployeeID: "e4", EmployeeName: "Alice Jones", Kind: "OFF_SPECIFIC_DATE", Value: "2030-01-01"},
		{ID: "r2", EmployeeID: "e5", EmployeeName: "Bob Miller", Kind: "LEGACY_KIND", Value: "whatever"},
	}
	svc := newRosterServiceForTest(rosterTestCrew(), requests, newMockRosterRepo(), nil)

	res, err := svc.Generate(context.Background(), generatePayload())
	require.NoError(t, err)
	require.Len(t, res.DroppedRequests, 2)

	reasons := map[string]string{}
	for _, d := range res.DroppedRequests {
		reasons[d.StaffName] = d.Reason
	}
	assert.Equal(t, "unknown request kind", reasons["Bob Miller"])
	assert.Equal(t, "date outside roster period", reasons["Alice Jones"])
}

func TestRosterServiceGenerateInfeasible(t *testing.T) {
	metrics := &mockSolveObserver{}
	svc := newRosterServiceForTest(rosterTestCrew()[:4], nil, newMockRosterRepo(), metrics)

	_, err := svc.Generate(context.Background(), generatePayload())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRosterInfeasible.Code, appErrors.FromError(err).Code)
	require.Len(t, metrics.outcomes, 1)
	assert.Equal(t, rota.OutcomeInfeasible.String(), metrics.outcomes[0])
}

func TestRosterServiceGenerateNoEmployees(t *testing.T) {
	svc := newRosterServiceForTest(nil, nil, newMockRosterRepo(), nil)

	_, err := svc.Generate(context.Background(), generatePayload())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceGenerateRejectsBadPayload(t *testing.T) {
	svc := newRosterServiceForTest(rosterTestCrew(), nil, newMockRosterRepo(), nil)

	payload := generatePayload()
	payload.ClosingStaff = []int{3, 3}
	_, err := svc.Generate(context.Background(), payload)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceSave(t *testing.T) {
	repo := newMockRosterRepo()
	svc := newRosterServiceForTest(rosterTestCrew(), nil, repo, nil)

	res, err := svc.Generate(context.Background(), generatePayload())
	require.NoError(t, err)

	meta, err := svc.Save(context.Background(), dto.SaveRosterRequest{ProposalID: res.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, "Roster 2025-12-22", meta.Label)
	assert.Equal(t, 1, meta.NumDays)
	require.Len(t, repo.rosters, 1)

	// The proposal is consumed on save.
	_, err = svc.Save(context.Background(), dto.SaveRosterRequest{ProposalID: res.ProposalID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceSaveUnknownProposal(t *testing.T) {
	svc := newRosterServiceForTest(rosterTestCrew(), nil, newMockRosterRepo(), nil)

	_, err := svc.Save(context.Background(), dto.SaveRosterRequest{ProposalID: "2b6f3e1c-74a5-4a53-9d6a-1a2b3c4d5e6f"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceListRejectsBadDates(t *testing.T) {
	svc := newRosterServiceForTest(nil, nil, newMockRosterRepo(), nil)

	_, _, err := svc.List(context.Background(), dto.ListRostersQuery{From: "yesterday"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceScheduleDecodesPayload(t *testing.T) {
	repo := newMockRosterRepo()
	repo.rosters["roster-1"] = &models.Roster{
		ID:      "roster-1",
		Label:   "Week 52",
		NumDays: 7,
		Payload: types.JSONText(`{"startDate":"2025-12-22T00:00:00Z","numDays":7,"rows":[],"days":[],"objective":1280}`),
	}
	svc := newRosterServiceForTest(nil, nil, repo, nil)

	schedule, roster, err := svc.Schedule(context.Background(), "roster-1")
	require.NoError(t, err)
	assert.Equal(t, "Week 52", roster.Label)
	assert.Equal(t, 7, schedule.NumDays)
	assert.Equal(t, int64(1280), schedule.Objective)
}

func TestRosterServiceDelete(t *testing.T) {
	repo := newMockRosterRepo()
	repo.rosters["roster-1"] = &models.Roster{ID: "roster-1"}
	svc := newRosterServiceForTest(nil, nil, repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "roster-1"))
	assert.Equal(t, []string{"roster-1"}, repo.deleted)

	err := svc.Delete(context.Background(), "roster-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
