package submissions

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"inviteform/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// List godoc
// @Summary List recorded submissions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id query string false "registration code"
// @Param outcome query string false "outcome filter"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/submissions [get]
func (c *Controller) List(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	if err := c.validator.Struct(&query); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	resp, err := c.service.List(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, http.StatusInternalServerError, "Failed to list submissions", nil)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Submissions retrieved successfully", resp)
}

// Export godoc
// @Summary Export submissions as CSV to object storage
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ExportRequest false "registration code filter"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/submissions/export [post]
func (c *Controller) Export(ctx *gin.Context) {
	var req ExportRequest
	// Body is optional
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	result, err := c.service.Export(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrExportDisabled):
			response.RespondError(ctx, http.StatusServiceUnavailable, "Export storage is not configured", nil)
		case errors.Is(err, ErrNothingToExport):
			response.RespondError(ctx, http.StatusNotFound, "No submissions to export", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "Failed to export submissions", nil)
		}
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Submissions exported successfully", result)
}
