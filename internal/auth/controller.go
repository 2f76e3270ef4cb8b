package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"inviteform/internal/shared/constants"
	"inviteform/internal/shared/utils/response"
	"inviteform/pkg/logger"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	logger    *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		logger:    log,
	}
}

// Login godoc
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} response.StandardApiResponse
// @Failure 401 {object} response.StandardApiResponse
// @Router /auth/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.logger.LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
			response.RespondError(ctx, http.StatusUnauthorized, "Invalid email or password", nil)
		case errors.Is(err, ErrAdminDisabled):
			response.RespondError(ctx, http.StatusServiceUnavailable, "Admin login is not configured", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "Failed to login", nil)
		}
		return
	}

	c.logger.LogAuthSuccess(ctx.Request.Context(), resp.Email, "password")
	response.RespondSuccess(ctx, http.StatusOK, "Login successful", resp)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	email, exists := ctx.Get(constants.CTX_USER_EMAIL)
	if !exists {
		response.RespondError(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	role, _ := ctx.Get(constants.CTX_USER_ROLE)

	response.RespondJSON(ctx, "success", http.StatusOK, "User data retrieved successfully", gin.H{
		"email": email,
		"role":  role,
	}, nil)
}
