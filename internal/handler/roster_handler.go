package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiftwise/rota-api/internal/dto"
	"github.com/shiftwise/rota-api/internal/middleware"
	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/service"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
	"github.com/shiftwise/rota-api/pkg/response"
)

type rosterManager interface {
	Generate(ctx context.Context, req dto.GenerateRosterRequest) (*dto.GenerateRosterResponse, error)
	Save(ctx context.Context, req dto.SaveRosterRequest) (*models.RosterMeta, error)
	List(ctx context.Context, query dto.ListRostersQuery) ([]models.RosterMeta, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Roster, bool, error)
	Delete(ctx context.Context, id string) error
}

type rosterExporter interface {
	Generate(ctx context.Context, rosterID string, format service.ExportFormat) (*service.ExportResult, error)
}

// RosterHandler exposes roster generation and persistence endpoints.
type RosterHandler struct {
	rosters rosterManager
	exports rosterExporter
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(rosters rosterManager, exports rosterExporter) *RosterHandler {
	return &RosterHandler{rosters: rosters, exports: exports}
}

// Generate godoc
// @Summary Generate roster proposal
// @Description Solve a roster for the requested period using the current staffing snapshot
// @Tags Rosters
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRosterRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /rosters/generate [post]
func (h *RosterHandler) Generate(c *gin.Context) {
	var req dto.GenerateRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	res, err := h.rosters.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Save godoc
// @Summary Save roster proposal
// @Description Persist a generated proposal as a saved roster
// @Tags Rosters
// @Accept json
// @Produce json
// @Param payload body dto.SaveRosterRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rosters [post]
func (h *RosterHandler) Save(c *gin.Context) {
	var req dto.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	meta, err := h.rosters.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, meta)
}

// List godoc
// @Summary List saved rosters
// @Description List saved rosters filtered by period start date
// @Tags Rosters
// @Produce json
// @Param from query string false "Start date lower bound (YYYY-MM-DD)"
// @Param to query string false "Start date upper bound (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rosters [get]
func (h *RosterHandler) List(c *gin.Context) {
	var query dto.ListRostersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	rosters, pagination, err := h.rosters.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rosters, pagination)
}

// Get godoc
// @Summary Get saved roster
// @Description Get a saved roster including its schedule payload
// @Tags Rosters
// @Produce json
// @Param id path string true "Roster ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rosters/{id} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	roster, cached, err := h.rosters.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, roster, nil, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Delete saved roster
// @Tags Rosters
// @Produce json
// @Param id path string true "Roster ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rosters/{id} [delete]
func (h *RosterHandler) Delete(c *gin.Context) {
	if err := h.rosters.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Export godoc
// @Summary Export saved roster
// @Description Render a saved roster to CSV or PDF and return a signed download URL
// @Tags Rosters
// @Produce json
// @Param id path string true "Roster ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rosters/{id}/export [post]
func (h *RosterHandler) Export(c *gin.Context) {
	format, ok := service.ParseExportFormat(c.DefaultQuery("format", "csv"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        result.URL,
		"format":     result.Format,
		"expires_at": result.ExpiresAt,
	}, nil)
}
