// Package scenes turns a user's prompt into an ordered, timed scene plan and
// refines scene keywords, using a generative model with JSON schema output.
package scenes

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/llm"
)

var tracer = otel.Tracer("github.com/Shimizu-Technology/storyboard-api/internal/services/scenes")

// Limits bounds an acceptable ScenePlanRequest.
type Limits struct {
	MinPromptLength    int
	MinDurationSeconds float64
	MaxDurationSeconds float64
	MinSceneCount      int
	MaxSceneCount      int
	DefaultSceneCount  int
}

// DefaultLimits are the widest bounds the product has shipped with.
func DefaultLimits() Limits {
	return Limits{
		MinPromptLength:    10,
		MinDurationSeconds: 5,
		MaxDurationSeconds: 300,
		MinSceneCount:      1,
		MaxSceneCount:      30,
		DefaultSceneCount:  6,
	}
}

// Credentials are the caller's model settings, loaded per request.
type Credentials struct {
	APIKey string
	Model  string
}

// Generator produces scene plans. It holds no per-request state and is safe
// for concurrent use.
type Generator struct {
	model  llm.Model
	limits Limits
	log    *logging.Logger
}

// NewGenerator creates a scene plan generator.
func NewGenerator(model llm.Model, limits Limits, log *logging.Logger) *Generator {
	return &Generator{model: model, limits: limits, log: log}
}

// Limits returns the bounds the generator enforces.
func (g *Generator) Limits() Limits {
	return g.limits
}

// Validate checks req against the configured bounds and returns it with the
// prompt trimmed and the scene count defaulted.
func (g *Generator) Validate(req models.ScenePlanRequest) (models.ScenePlanRequest, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if n := utf8.RuneCountInString(req.Prompt); n < g.limits.MinPromptLength {
		return req, apperr.Validation("prompt must be at least %d characters (got %d)", g.limits.MinPromptLength, n)
	}

	if !req.AspectRatio.Valid() {
		return req, apperr.Validation("aspectRatio must be %q or %q", models.AspectHorizontal, models.AspectVertical)
	}

	d := req.TargetDurationSeconds
	if math.IsNaN(d) || d < g.limits.MinDurationSeconds || d > g.limits.MaxDurationSeconds {
		return req, apperr.Validation("targetDurationSeconds must be between %g and %g",
			g.limits.MinDurationSeconds, g.limits.MaxDurationSeconds)
	}

	if req.DesiredSceneCount == 0 {
		req.DesiredSceneCount = g.limits.DefaultSceneCount
	}
	if req.DesiredSceneCount < g.limits.MinSceneCount || req.DesiredSceneCount > g.limits.MaxSceneCount {
		return req, apperr.Validation("desiredSceneCount must be between %d and %d",
			g.limits.MinSceneCount, g.limits.MaxSceneCount)
	}

	return req, nil
}

// Generate validates req, asks the model for a plan in a single call and
// returns the scenes in model order. Scene ids are not assigned here.
//
// Errors: validation (bad request, no model call), configuration (missing or
// rejected key), provider (upstream failure), generation (unusable output).
func (g *Generator) Generate(ctx context.Context, req models.ScenePlanRequest, creds Credentials) (models.ScenePlan, error) {
	ctx, span := tracer.Start(ctx, "scenes.Generate")
	defer span.End()

	req, err := g.Validate(req)
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	if strings.TrimSpace(creds.APIKey) == "" {
		span.SetStatus(codes.Error, "missing credential")
		return nil, apperr.Configuration("Gemini API key not configured; save geminiApiKey in your settings")
	}

	prompt, err := buildScenePlanPrompt(req)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("storyboard.aspect_ratio", string(req.AspectRatio)),
		attribute.Float64("storyboard.target_seconds", req.TargetDurationSeconds),
		attribute.Int("storyboard.desired_scenes", req.DesiredSceneCount),
	)

	raw, err := g.model.GenerateJSON(ctx, llm.Request{
		APIKey: creds.APIKey,
		Model:  creds.Model,
		Prompt: prompt,
		Schema: ScenePlanSchema(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Provider(0, err, "scene generation request failed")
		}
		return nil, err
	}

	plan, err := DecodeScenePlan(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid plan")
		g.log.Warn("model returned an unusable scene plan", "error", err)
		if errors.Is(err, errEmptyPlan) {
			return nil, apperr.Generation(err, "the model returned no scenes; try rephrasing the prompt")
		}
		return nil, apperr.Generation(err, "the model returned an invalid scene plan")
	}

	span.SetAttributes(attribute.Int("storyboard.scenes", len(plan)))
	g.log.Info("scene plan generated",
		"scenes", len(plan),
		"requested_scenes", req.DesiredSceneCount,
		"total_seconds", plan.TotalDuration(),
		"target_seconds", req.TargetDurationSeconds,
		"model", creds.Model,
	)

	return plan, nil
}
