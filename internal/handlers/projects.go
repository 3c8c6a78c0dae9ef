package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/project"
)

// CreateProject generates a scene plan and saves it as a new project.
// POST /api/v1/projects
//
// The response is only sent once the project is stored: a storage failure
// is reported as an error and no project id is returned.
func (h *Handler) CreateProject(c *gin.Context) {
	var req models.ScenePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}
	h.createProject(c, req)
}

func (h *Handler) createProject(c *gin.Context, req models.ScenePlanRequest) {
	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	p, err := h.Projects.Create(c.Request.Context(), middleware.GetOwnerID(c), req, project.CreateOptions{
		Credentials:  credentials(cfg),
		FreesoundKey: cfg.FreesoundKey,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListProjects returns the caller's projects, most recently updated first.
// GET /api/v1/projects
func (h *Handler) ListProjects(c *gin.Context) {
	summaries, err := h.Projects.List(c.Request.Context(), middleware.GetOwnerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries, Total: len(summaries)})
}

// GetProject returns one project.
// GET /api/v1/projects/:id
func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.Projects.Get(c.Request.Context(), middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProject applies a partial update to project-level fields.
// PATCH /api/v1/projects/:id
func (h *Handler) UpdateProject(c *gin.Context) {
	var patch models.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	p, err := h.Projects.Update(c.Request.Context(), middleware.GetOwnerID(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateScene applies a partial update to one scene.
// PATCH /api/v1/projects/:id/scenes/:sceneId
func (h *Handler) UpdateScene(c *gin.Context) {
	var patch models.ScenePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	p, err := h.Projects.UpdateScene(c.Request.Context(), middleware.GetOwnerID(c), c.Param("id"), c.Param("sceneId"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProject removes a project.
// DELETE /api/v1/projects/:id
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.Projects.Delete(c.Request.Context(), middleware.GetOwnerID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
