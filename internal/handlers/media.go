package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/media"
)

// visualType reads ?type=image|video, defaulting to image.
func visualType(c *gin.Context) (models.MediaType, bool) {
	t := models.MediaType(c.DefaultQuery("type", string(models.MediaImage)))
	if t != models.MediaImage && t != models.MediaVideo {
		badRequest(c, "invalid_type", "type must be image or video")
		return "", false
	}
	return t, true
}

// SearchVisual searches stock photos or videos.
// GET /api/v1/media/visual?q=...&type=image|video
func (h *Handler) SearchVisual(c *gin.Context) {
	t, ok := visualType(c)
	if !ok {
		return
	}
	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	query := c.Query("q")
	results, err := h.Media.SearchVisual(c.Request.Context(), query, t, cfg.PixabayKey)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MediaSearchResponse{Query: query, Type: t, Results: results})
}

// SearchAudio searches sound clips.
// GET /api/v1/media/audio?q=...
func (h *Handler) SearchAudio(c *gin.Context) {
	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	query := c.Query("q")
	results, err := h.Media.SearchAudio(c.Request.Context(), query, cfg.FreesoundKey)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MediaSearchResponse{Query: query, Type: models.MediaAudio, Results: results})
}

// SceneMedia suggests visual and audio candidates for one scene from its
// keywords. A search whose key is missing is skipped with a warning.
// GET /api/v1/projects/:id/scenes/:sceneId/media?type=image|video
func (h *Handler) SceneMedia(c *gin.Context) {
	t, ok := visualType(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	p, err := h.Projects.Get(ctx, middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	i := p.SceneIndex(c.Param("sceneId"))
	if i < 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Scene not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	suggestions, err := h.Media.SuggestForScene(ctx, p.Scenes[i], t, media.Keys{
		Pixabay:   cfg.PixabayKey,
		Freesound: cfg.FreesoundKey,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
