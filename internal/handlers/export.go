// export.go handles project export in multiple formats.
//
// Supported formats:
//   - json — Render payload: project plus the owner's render options
//   - srt  — SubRip subtitles, one cue per narrated scene
//   - md   — Markdown storyboard sheet
//
// Go Pattern: Each export format is its own function in the project package.
// The handler only picks one and sets download headers, so adding a format
// is a new case in the switch.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/project"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/render"
)

// ExportProject exports a project in the requested format.
// GET /api/v1/projects/:id/export?format=json|srt|md&notes=...
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
func (h *Handler) ExportProject(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	// Validate format before doing any database work
	validFormats := map[string]bool{"json": true, "srt": true, "md": true}
	if !validFormats[format] {
		badRequest(c, "invalid_format", "Supported formats: json, srt, md")
		return
	}

	p, err := h.Projects.Get(c.Request.Context(), middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := sanitizeFilename(p.Name)
	if filename == "" {
		filename = p.ID
	}

	switch format {
	case "json":
		cfg, ok := h.userConfig(c)
		if !ok {
			return
		}
		body, err := json.MarshalIndent(project.Payload(p, cfg, c.Query("notes")), "", "  ")
		if err != nil {
			h.respondError(c, apperr.Internal(err, "failed to encode export"))
			return
		}
		attachment(c, filename+".json", "application/json; charset=utf-8", body)
	case "srt":
		attachment(c, filename+".srt", "text/srt; charset=utf-8", []byte(project.SRT(p)))
	case "md":
		attachment(c, filename+".md", "text/markdown; charset=utf-8", []byte(project.Markdown(p)))
	}
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}

// RenderProject submits the project's export payload to the owner's
// configured render backend.
// POST /api/v1/projects/:id/render
func (h *Handler) RenderProject(c *gin.Context) {
	var req models.RenderRequest
	// The body is optional; an empty body means no notes.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid_request", "Invalid JSON body: "+err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	p, err := h.Projects.Get(ctx, middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	cfg, ok := h.userConfig(c)
	if !ok {
		return
	}

	target := render.Target{URL: cfg.RenderBackendURL, APIKey: cfg.RenderBackendAPIKey}
	sub, err := h.Render.Submit(ctx, target, project.Payload(p, cfg, req.Notes))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, sub)
}

// --- Helper Functions ---

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple — replace unsafe characters with hyphens
// and trim the result. We don't need a full filesystem-safe sanitizer
// since this is just for the Content-Disposition header.
func sanitizeFilename(name string) string {
	// Replace common unsafe characters
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length in characters; a byte cut can split a multi-byte rune.
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}

	return name
}
