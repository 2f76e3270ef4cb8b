// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "inviteform/docs"
	"inviteform/internal/auth"
	"inviteform/internal/backend"
	"inviteform/internal/notifications"
	"inviteform/internal/registration"
	"inviteform/internal/shared/config"
	"inviteform/internal/shared/database"
	"inviteform/internal/submissions"
	"inviteform/pkg/cache"
	"inviteform/pkg/logger"
)

const serviceName = "inviteform"

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	logger      *logger.Logger
	backend     registration.Backend
	submissions submissions.Service // nil without Postgres
	publisher   notifications.Publisher
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger, audit submissions.Service, publisher notifications.Publisher) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		logger:      log,
		backend:     backend.NewClient(cfg.Backend.URL, backend.Encoding(cfg.Backend.Encoding), cfg.Backend.Timeout),
		submissions: audit,
		publisher:   publisher,
	}
}

// WithBackend swaps the hosted backend client
func (r *Router) WithBackend(be registration.Backend) *Router {
	r.backend = be
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())

	r.setupRegistrationRoutes(engine, api)
	r.setupAuthRoutes(api)
	r.setupSubmissionRoutes(api)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"form_mode":     r.config.Backend.FormMode,
			"quota_cache":   r.db.GetRedisClient() != nil,
			"audit_log":     r.submissions != nil,
			"backend_ready": r.config.Backend.URL != "",
			"timestamp":     time.Now(),
		})
	})
}

// setupRegistrationRoutes serves the guest page and its JSON API
func (r *Router) setupRegistrationRoutes(engine *gin.Engine, api *gin.RouterGroup) {
	var quotaCache cache.Service
	if rdb := r.db.GetRedisClient(); rdb != nil {
		quotaCache = cache.NewService(rdb)
	}

	service := registration.NewService(r.backend, quotaCache, r.publisher, r.logger, registration.Options{
		Mode:     registration.ParseFormMode(r.config.Backend.FormMode),
		CacheTTL: r.config.Backend.QuotaCacheTTL,
	})
	router := registration.NewRouter(registration.NewController(service))

	router.SetupPageRoutes(engine)
	router.SetupRoutes(api)
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(r.config)
	authController := auth.NewController(authService, r.logger)
	auth.NewRouter(authController, r.config).SetupRoutes(rg)
}

// setupSubmissionRoutes configures the admin audit routes when Postgres is on
func (r *Router) setupSubmissionRoutes(rg *gin.RouterGroup) {
	if r.submissions == nil {
		r.logger.Info("Audit log disabled, admin submission routes not registered")
		return
	}
	controller := submissions.NewController(r.submissions)
	submissions.NewRouter(controller, r.config).SetupRoutes(rg)
}
