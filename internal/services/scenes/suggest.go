package scenes

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/keywords"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/llm"
)

// Refiner suggests alternative keywords for a scene. Suggestions are
// optional, so every failure degrades to an empty list instead of an error.
type Refiner struct {
	model llm.Model
	log   *logging.Logger
}

// NewRefiner creates a keyword refiner.
func NewRefiner(model llm.Model, log *logging.Logger) *Refiner {
	return &Refiner{model: model, log: log}
}

// Suggest returns cleaned keyword suggestions, or an empty (never nil) list
// when the credential is missing, the call fails or the answer is malformed.
func (r *Refiner) Suggest(ctx context.Context, req models.KeywordSuggestionRequest, creds Credentials) []string {
	ctx, span := tracer.Start(ctx, "scenes.Suggest")
	defer span.End()

	empty := []string{}

	if strings.TrimSpace(creds.APIKey) == "" {
		r.log.Warn("keyword suggestion skipped: no Gemini API key configured")
		return empty
	}
	if strings.TrimSpace(req.SceneDescription) == "" && len(req.ExistingKeywords) == 0 && len(req.NewKeywords) == 0 {
		return empty
	}

	prompt, err := buildKeywordPrompt(req)
	if err != nil {
		r.log.Warn("keyword suggestion prompt failed", "error", err)
		return empty
	}

	raw, err := r.model.GenerateJSON(ctx, llm.Request{
		APIKey: creds.APIKey,
		Model:  creds.Model,
		Prompt: prompt,
		Schema: KeywordSuggestionSchema(),
	})
	if err != nil {
		span.RecordError(err)
		r.log.Warn("keyword suggestion failed", "error", err)
		return empty
	}

	var out struct {
		SuggestedKeywords []string `json:"suggestedKeywords"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		r.log.Warn("keyword suggestion returned malformed output", "error", err)
		return empty
	}

	// Entries sometimes come back as one comma separated string.
	var flat []string
	for _, entry := range out.SuggestedKeywords {
		flat = append(flat, keywords.Split(entry)...)
	}
	return keywords.Clean(flat)
}
