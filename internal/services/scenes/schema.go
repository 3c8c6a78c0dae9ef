package scenes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// fieldKind is the JSON type of a scene field.
type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

// sceneField describes one field of a generated scene. The same table builds
// the response schema sent to the model and validates what comes back.
type sceneField struct {
	name        string
	kind        fieldKind
	description string
	enum        []string
	// fallback is used when an enum field is absent or blank. Fields without
	// a fallback are required.
	fallback string
}

var sceneFields = []sceneField{
	{
		name:        "title",
		kind:        kindString,
		description: "The title of the scene.",
	},
	{
		name:        "narration",
		kind:        kindString,
		description: "The narration script for the scene, 2-3 sentences, read by text-to-speech.",
	},
	{
		name:        "durationSeconds",
		kind:        kindNumber,
		description: "The duration of the scene in seconds.",
	},
	{
		name:        "visualKeywords",
		kind:        kindString,
		description: `Comma-separated visual keywords for searching stock images and videos (e.g. "sunset, beach, ocean waves").`,
	},
	{
		name:        "audioKeywords",
		kind:        kindString,
		description: `Short, simple audio search keywords, max 3-4 basic terms (e.g. "piano", "ambient music", "nature sounds").`,
	},
	{
		name:        "transitionType",
		kind:        kindString,
		description: `The transition effect used when moving to this scene. Defaults to "fade".`,
		enum:        enumValues(models.TransitionTypes),
		fallback:    string(models.TransitionFade),
	},
	{
		name:        "subtitleTransition",
		kind:        kindString,
		description: `How subtitles transition in this scene. Defaults to "fade".`,
		enum:        enumValues(models.SubtitleTransitions),
		fallback:    string(models.SubtitleFade),
	},
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// ScenePlanSchema is the response schema for scene plan generation: an array
// of scene objects.
func ScenePlanSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(sceneFields))
	ordering := make([]string, 0, len(sceneFields))
	var required []string

	for _, f := range sceneFields {
		s := &genai.Schema{Description: f.description}
		switch f.kind {
		case kindNumber:
			s.Type = genai.TypeNumber
		default:
			s.Type = genai.TypeString
			s.Enum = f.enum
		}
		props[f.name] = s
		ordering = append(ordering, f.name)
		if f.fallback == "" {
			required = append(required, f.name)
		}
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type:             genai.TypeObject,
			Properties:       props,
			Required:         required,
			PropertyOrdering: ordering,
		},
	}
}

// KeywordSuggestionSchema is the response schema for keyword refinement.
func KeywordSuggestionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedKeywords": {
				Type:        genai.TypeArray,
				Description: "Alternative keyword suggestions for the scene.",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"suggestedKeywords"},
	}
}

var errEmptyPlan = errors.New("scene plan is empty")

// DecodeScenePlan validates raw model output against the scene field table
// and returns the scenes in the order the model produced them. Durations are
// kept exactly as returned.
func DecodeScenePlan(raw string) (models.ScenePlan, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, errEmptyPlan
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		// Tolerate a {"scenes": [...]} wrapper.
		var wrapped struct {
			Scenes []map[string]json.RawMessage `json:"scenes"`
		}
		if werr := json.Unmarshal([]byte(body), &wrapped); werr != nil {
			return nil, fmt.Errorf("response is not a JSON array of scenes: %w", err)
		}
		items = wrapped.Scenes
	}

	if len(items) == 0 {
		return nil, errEmptyPlan
	}

	plan := make(models.ScenePlan, 0, len(items))
	for i, item := range items {
		scene, err := decodeScene(item)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
		plan = append(plan, scene)
	}
	return plan, nil
}

func decodeScene(item map[string]json.RawMessage) (models.Scene, error) {
	if item == nil {
		return models.Scene{}, errors.New("scene is not an object")
	}

	strs := make(map[string]string, len(sceneFields))
	nums := make(map[string]float64, 1)

	for _, f := range sceneFields {
		raw, present := item[f.name]
		if !present || string(raw) == "null" {
			if f.fallback == "" {
				return models.Scene{}, fmt.Errorf("missing field %q", f.name)
			}
			strs[f.name] = f.fallback
			continue
		}

		switch f.kind {
		case kindNumber:
			var n float64
			if err := json.Unmarshal(raw, &n); err != nil {
				return models.Scene{}, fmt.Errorf("field %q must be a number", f.name)
			}
			nums[f.name] = n

		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return models.Scene{}, fmt.Errorf("field %q must be a string", f.name)
			}
			s = strings.TrimSpace(s)
			if f.enum != nil {
				s = strings.ToLower(s)
				if s == "" {
					s = f.fallback
				}
				if !contains(f.enum, s) {
					return models.Scene{}, fmt.Errorf("field %q has unsupported value %q", f.name, s)
				}
			}
			strs[f.name] = s
		}
	}

	scene := models.Scene{
		Title:              strs["title"],
		Narration:          strs["narration"],
		DurationSeconds:    nums["durationSeconds"],
		VisualKeywords:     strs["visualKeywords"],
		AudioKeywords:      strs["audioKeywords"],
		TransitionType:     models.TransitionType(strs["transitionType"]),
		SubtitleTransition: models.SubtitleTransition(strs["subtitleTransition"]),
	}

	if scene.Title == "" {
		return models.Scene{}, errors.New("title is empty")
	}
	if scene.Narration == "" {
		return models.Scene{}, errors.New("narration is empty")
	}
	if scene.DurationSeconds <= 0 {
		return models.Scene{}, fmt.Errorf("durationSeconds must be positive, got %g", scene.DurationSeconds)
	}
	return scene, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// extractJSON pulls the JSON document out of a model response. Models
// sometimes wrap it in a markdown code fence or add a sentence around it.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if json.Valid([]byte(content)) {
		return content
	}

	// Strip ```json ... ``` fences.
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
		if json.Valid([]byte(content)) {
			return content
		}
	}

	// Fall back to the outermost [...] or {...} span.
	start := strings.IndexAny(content, "[{")
	if start < 0 {
		return content
	}
	closer := byte(']')
	if content[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(content, closer)
	if end <= start {
		return content
	}
	candidate := content[start : end+1]
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(candidate)); err != nil {
		return content
	}
	return buf.String()
}
