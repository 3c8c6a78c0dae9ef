package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/brief"
)

// maxBriefSize is the upload limit for PDF briefs (10MB).
const maxBriefSize = 10 << 20

// CreateProjectFromBrief turns an uploaded PDF brief into a project.
// POST /api/v1/projects/from-brief
//
// Accepts multipart/form-data with:
//   - file: the PDF brief (required)
//   - direction: extra instructions placed before the brief text
//   - aspectRatio, targetDurationSeconds, desiredSceneCount: plan parameters
func (h *Handler) CreateProjectFromBrief(c *gin.Context) {
	// Limit request body size to prevent abuse
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBriefSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "missing_file", "A PDF file is required (field name: 'file')")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		badRequest(c, "invalid_file_type", "Only PDF files are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(c, "read_error", "Failed to read uploaded file")
		return
	}

	req, ok := planParams(c)
	if !ok {
		return
	}

	b, err := brief.Extract(data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	req.Prompt, err = b.Prompt(c.PostForm("direction"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("📄 Brief extracted",
		"filename", header.Filename,
		"pages", b.PageCount,
		"words", b.WordCount,
	)
	h.createProject(c, req)
}

// planParams reads the scene plan parameters from form fields. Range checks
// are left to the generator so both create endpoints report them the same way.
func planParams(c *gin.Context) (models.ScenePlanRequest, bool) {
	req := models.ScenePlanRequest{
		AspectRatio: models.AspectRatio(c.PostForm("aspectRatio")),
	}

	if raw := strings.TrimSpace(c.PostForm("targetDurationSeconds")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "invalid_request", "targetDurationSeconds must be a number")
			return req, false
		}
		req.TargetDurationSeconds = v
	}
	if raw := strings.TrimSpace(c.PostForm("desiredSceneCount")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid_request", "desiredSceneCount must be an integer")
			return req, false
		}
		req.DesiredSceneCount = v
	}
	return req, true
}
