package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// GenerateScenes asks the model for a scene plan without saving it.
// Scene ids are assigned when a plan is saved as a project.
// POST /api/v1/scenes/generate
func (h *Handler) GenerateScenes(c *gin.Context) {
	var req models.ScenePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	plan, err := h.Generator.Generate(c.Request.Context(), req, credentials(cfg))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("🎬 Scene plan generated",
		"owner", middleware.GetOwnerID(c),
		"scenes", len(plan),
	)
	c.JSON(http.StatusOK, models.ScenePlanResponse{
		Scenes:        plan,
		TotalDuration: plan.TotalDuration(),
	})
}

// SuggestKeywords refines a scene's keywords. The refiner never fails: any
// model or parse problem yields an empty list, so this always answers 200.
// POST /api/v1/keywords/suggest
func (h *Handler) SuggestKeywords(c *gin.Context) {
	var req models.KeywordSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	keywords := h.Refiner.Suggest(c.Request.Context(), req, credentials(cfg))
	c.JSON(http.StatusOK, models.KeywordSuggestionResponse{SuggestedKeywords: keywords})
}
