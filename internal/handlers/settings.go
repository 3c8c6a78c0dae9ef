package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// GetSettings returns the caller's settings with secrets masked.
// GET /api/v1/settings
func (h *Handler) GetSettings(c *gin.Context) {
	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cfg.View())
}

// UpdateSettings merges a partial settings document into the caller's
// settings. Omitted fields are unchanged; an empty string clears a field.
// PATCH /api/v1/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch models.UserConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	cfg, err := h.DB.UpdateUserConfig(c.Request.Context(), middleware.GetOwnerID(c), func(cfg *models.UserConfig) error {
		if err := patch.Apply(cfg); err != nil {
			return apperr.Validation("%s", err.Error())
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Persistence(err, "failed to save settings")
		}
		h.respondError(c, err)
		return
	}

	h.Log.Info("⚙️ Settings updated", "owner", middleware.GetOwnerID(c))
	c.JSON(http.StatusOK, cfg.View())
}
