// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, String, Status)
// - Middleware data (c.Get/c.Set)
//
// Unlike Ruby controllers, Go handlers are plain functions — no class inheritance.
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/database"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/media"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/project"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/render"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/scenes"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy — just create a Handler with fake dependencies.
type Handler struct {
	DB        *database.DB
	Generator *scenes.Generator
	Refiner   *scenes.Refiner
	Media     *media.Service
	Projects  *project.Service
	Render    *render.Service
	Log       *logging.Logger
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(db *database.DB, gen *scenes.Generator, refiner *scenes.Refiner, mediaSvc *media.Service, renderSvc *render.Service, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{
		DB:        db,
		Generator: gen,
		Refiner:   refiner,
		Media:     mediaSvc,
		Projects:  project.NewService(db, gen, mediaSvc, log),
		Render:    renderSvc,
		Log:       log,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	// Check database connectivity
	dbStatus := "healthy"
	if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	cacheStatus := h.Media.CacheName()
	if err := h.Media.PingCache(c.Request.Context()); err != nil {
		cacheStatus += " (unhealthy: " + err.Error() + ")"
	}

	status := "ok"
	if dbStatus != "healthy" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   status,
		Version:  Version,
		Database: dbStatus,
		Cache:    cacheStatus,
	})
}
