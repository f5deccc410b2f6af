package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/rota-api/internal/dto"
	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/service"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type rosterManagerMock struct {
	generateResp *dto.GenerateRosterResponse
	generateErr  error
	saveResp     *models.RosterMeta
	saveErr      error
	listResp     []models.RosterMeta
	getResp      *models.Roster
	getErr       error
	deleteErr    error
	lastGenerate dto.GenerateRosterRequest
	lastQuery    dto.ListRostersQuery
}

func (m *rosterManagerMock) Generate(ctx context.Context, req dto.GenerateRosterRequest) (*dto.GenerateRosterResponse, error) {
	m.lastGenerate = req
	return m.generateResp, m.generateErr
}

func (m *rosterManagerMock) Save(ctx context.Context, req dto.SaveRosterRequest) (*models.RosterMeta, error) {
	return m.saveResp, m.saveErr
}

func (m *rosterManagerMock) List(ctx context.Context, query dto.ListRostersQuery) ([]models.RosterMeta, *models.Pagination, error) {
	m.lastQuery = query
	return m.listResp, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listResp)}, nil
}

func (m *rosterManagerMock) Get(ctx context.Context, id string) (*models.Roster, bool, error) {
	return m.getResp, false, m.getErr
}

func (m *rosterManagerMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

type rosterExporterMock struct {
	result     *service.ExportResult
	err        error
	lastFormat service.ExportFormat
}

func (m *rosterExporterMock) Generate(ctx context.Context, rosterID string, format service.ExportFormat) (*service.ExportResult, error) {
	m.lastFormat = format
	return m.result, m.err
}

func newRosterTestContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestRosterHandlerGenerate(t *testing.T) {
	mockSvc := &rosterManagerMock{
		generateResp: &dto.GenerateRosterResponse{ProposalID: "prop-1", Outcome: "Optimal"},
	}
	h := NewRosterHandler(mockSvc, nil)

	payload := dto.GenerateRosterRequest{
		StartDate:    "2025-12-22",
		NumDays:      7,
		ClosingStaff: []int{3, 3, 3, 3, 3, 3, 3},
		DailyBudgets: []float64{80, 80, 80, 80, 80, 80, 80},
	}
	c, w := newRosterTestContext(t, http.MethodPost, "/rosters/generate", payload)

	h.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, mockSvc.lastGenerate.NumDays)
	assert.Contains(t, w.Body.String(), "prop-1")
}

func TestRosterHandlerGenerateInfeasible(t *testing.T) {
	mockSvc := &rosterManagerMock{
		generateErr: appErrors.ErrRosterInfeasible,
	}
	h := NewRosterHandler(mockSvc, nil)

	payload := dto.GenerateRosterRequest{
		StartDate:    "2025-12-22",
		NumDays:      7,
		ClosingStaff: []int{3, 3, 3, 3, 3, 3, 3},
		DailyBudgets: []float64{80, 80, 80, 80, 80, 80, 80},
	}
	c, w := newRosterTestContext(t, http.MethodPost, "/rosters/generate", payload)

	h.Generate(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrRosterInfeasible.Code)
}

func TestRosterHandlerGenerateRejectsMalformedBody(t *testing.T) {
	h := NewRosterHandler(&rosterManagerMock{}, nil)

	c, w := newRosterTestContext(t, http.MethodPost, "/rosters/generate", nil)
	c.Request.Body = http.NoBody

	h.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterHandlerSave(t *testing.T) {
	mockSvc := &rosterManagerMock{
		saveResp: &models.RosterMeta{ID: "roster-1", Label: "Week 52"},
	}
	h := NewRosterHandler(mockSvc, nil)

	c, w := newRosterTestContext(t, http.MethodPost, "/rosters", dto.SaveRosterRequest{ProposalID: "prop-1"})

	h.Save(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Week 52")
}

func TestRosterHandlerList(t *testing.T) {
	mockSvc := &rosterManagerMock{
		listResp: []models.RosterMeta{{ID: "roster-1"}},
	}
	h := NewRosterHandler(mockSvc, nil)

	c, w := newRosterTestContext(t, http.MethodGet, "/rosters?from=2025-12-01&page=2", nil)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-12-01", mockSvc.lastQuery.From)
	assert.Equal(t, 2, mockSvc.lastQuery.Page)
}

func TestRosterHandlerExport(t *testing.T) {
	exporter := &rosterExporterMock{
		result: &service.ExportResult{
			URL:       "/api/v1/export/tok",
			Format:    service.ExportFormatPDF,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	h := NewRosterHandler(&rosterManagerMock{}, exporter)

	c, w := newRosterTestContext(t, http.MethodPost, "/rosters/roster-1/export?format=pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: "roster-1"}}

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatPDF, exporter.lastFormat)
	assert.Contains(t, w.Body.String(), "/api/v1/export/tok")
}

func TestRosterHandlerExportBadFormat(t *testing.T) {
	h := NewRosterHandler(&rosterManagerMock{}, &rosterExporterMock{})

	c, w := newRosterTestContext(t, http.MethodPost, "/rosters/roster-1/export?format=xlsx", nil)
	c.Params = gin.Params{{Key: "id", Value: "roster-1"}}

	h.Export(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
