package submissions

import (
	"github.com/gin-gonic/gin"

	"inviteform/internal/shared/config"
	"inviteform/internal/shared/middleware"
)

// Router handles the admin audit routes
type Router struct {
	controller *Controller
	config     *config.Config
}

func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers the admin-only submission routes
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/submissions")
	admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireAdmin())
	{
		admin.GET("", r.controller.List)
		admin.POST("/export", r.controller.Export)
	}
}
