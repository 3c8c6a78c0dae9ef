// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Shimizu-Technology/storyboard-api/internal/handlers"
	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
)

// Options are the router-level settings.
type Options struct {
	ServiceName        string
	JWTSecret          string
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Setup creates and configures the Gin router with all routes. The returned
// rate limiter owns a cleanup goroutine; call Stop on shutdown.
func Setup(h *handlers.Handler, opts Options) (*gin.Engine, *middleware.RateLimiter) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(opts.ServiceName))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	rateLimiter := middleware.NewRateLimiter(opts.RateLimitPerMinute)

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- Owner routes: every document is scoped to the token's subject ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.OwnerAuth(opts.JWTSecret))
	protected.Use(rateLimiter.RateLimit())
	{
		// Settings (credentials are stored per owner)
		protected.GET("/settings", h.GetSettings)
		protected.PATCH("/settings", h.UpdateSettings)

		// Generation
		protected.POST("/scenes/generate", h.GenerateScenes)
		protected.POST("/keywords/suggest", h.SuggestKeywords)

		// Stock media search
		protected.GET("/media/visual", h.SearchVisual)
		protected.GET("/media/audio", h.SearchAudio)

		// Projects
		protected.POST("/projects", h.CreateProject)
		protected.POST("/projects/from-brief", h.CreateProjectFromBrief)
		protected.GET("/projects", h.ListProjects)
		protected.GET("/projects/:id", h.GetProject)
		protected.PATCH("/projects/:id", h.UpdateProject)
		protected.DELETE("/projects/:id", h.DeleteProject)
		protected.PATCH("/projects/:id/scenes/:sceneId", h.UpdateScene)
		protected.GET("/projects/:id/scenes/:sceneId/media", h.SceneMedia)
		protected.GET("/projects/:id/export", h.ExportProject)
		protected.POST("/projects/:id/render", h.RenderProject)
	}

	return r, rateLimiter
}
