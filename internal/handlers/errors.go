package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/scenes"
)

// errorStatus maps an error kind to its HTTP status and error code.
func errorStatus(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, "validation_error"
	case apperr.KindConfiguration:
		return http.StatusUnprocessableEntity, "configuration_error"
	case apperr.KindGeneration:
		return http.StatusBadGateway, "generation_error"
	case apperr.KindProvider:
		return http.StatusBadGateway, "provider_error"
	case apperr.KindPersistence:
		return http.StatusInternalServerError, "persistence_error"
	case apperr.KindNotFound:
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes err as an ErrorResponse. Server-side failures are
// logged with their cause; the client only sees the message.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, code := errorStatus(kind)

	message := apperr.Message(err)
	if kind == apperr.KindInternal {
		message = "Internal server error"
	}
	if status >= http.StatusInternalServerError {
		log := h.Log
		// Correlate with the otelgin span when tracing is on.
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			log = log.With("trace_id", sc.TraceID().String())
		}
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"kind", kind,
			"error", err,
		)
	}

	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

// userConfig loads the caller's settings; credentials are read per request
// and never cached. On failure the error response is already written.
func (h *Handler) userConfig(c *gin.Context) (*models.UserConfig, bool) {
	cfg, err := h.DB.GetUserConfig(c.Request.Context(), middleware.GetOwnerID(c))
	if err != nil {
		h.respondError(c, apperr.Persistence(err, "failed to load settings"))
		return nil, false
	}
	return cfg, true
}

// credentials are the model settings taken from cfg.
func credentials(cfg *models.UserConfig) scenes.Credentials {
	return scenes.Credentials{APIKey: cfg.GeminiAPIKey, Model: cfg.TextModel()}
}
