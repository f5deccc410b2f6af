package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/service"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
	"github.com/shiftwise/rota-api/pkg/response"
)

// ScheduleRequestHandler handles scheduling wish endpoints.
type ScheduleRequestHandler struct {
	service *service.ScheduleRequestService
}

// NewScheduleRequestHandler creates a new handler.
func NewScheduleRequestHandler(svc *service.ScheduleRequestService) *ScheduleRequestHandler {
	return &ScheduleRequestHandler{service: svc}
}

// List godoc
// @Summary List schedule requests
// @Description List scheduling wishes with pagination and filtering
// @Tags Requests
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param employee_id query string false "Employee filter"
// @Param kind query string false "Kind filter"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *ScheduleRequestHandler) List(c *gin.Context) {
	var filter models.ScheduleRequestFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	filter.EmployeeID = c.Query("employee_id")
	filter.Kind = c.Query("kind")

	requests, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, pagination)
}

// Create godoc
// @Summary Create schedule request
// @Description Record a scheduling wish for an employee
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequestRequest true "Create request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [post]
func (h *ScheduleRequestHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// Delete godoc
// @Summary Delete schedule request
// @Description Remove a scheduling wish
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [delete]
func (h *ScheduleRequestHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
