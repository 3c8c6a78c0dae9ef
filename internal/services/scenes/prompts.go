package scenes

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

const scenePlanTemplate = `You are an AI video scene planner. Given the following prompt and parameters, generate a set of video scenes.

The final video should be approximately {{.Duration}} seconds long and have a {{.AspectRatio}} aspect ratio.
Try to produce around {{.SceneCount}} scenes (adjust if needed for pacing) and distribute the total duration across them.

Prompt: {{.Prompt}}

Each scene should include:
- A title for context
- A 2-3 sentence narration script (this will be used for text-to-speech)
- A duration in seconds (durationSeconds) that contributes to the total video length of {{.Duration}} seconds
- Visual keywords for searching stock images and videos (comma-separated, e.g. "sunset, beach, ocean waves, nature")
- Audio keywords for searching scene background audio (SIMPLE, GENERIC terms common in sound libraries, max 3-4 words, e.g. "ambient music", "nature sounds", "piano", "drums beat", "wind", "rain")
- Transition type: one of {{.Transitions}}; vary the transitions to keep the video dynamic
- Subtitle transition: one of {{.SubtitleTransitions}}; vary to match the scene's mood

Important: Make sure visual keywords are descriptive and specific for the {{.AspectRatio}} aspect ratio.
Important: Audio keywords must be SHORT and SIMPLE. Avoid complex or overly specific phrases.

Return the scenes as a JSON array.`

const keywordTemplate = `You are an AI assistant helping a user fine-tune keywords for a video scene.

The scene is described as: {{.Description}}.

The existing keywords are: {{join .Existing}}.

The user wants to consider these new keywords: {{join .New}}.

Based on the scene description and the new keywords, suggest alternative keywords that could improve image and audio selection for the scene. Return each keyword as a separate entry of suggestedKeywords.`

var (
	funcs = template.FuncMap{
		"join": func(items []string) string { return strings.Join(items, ", ") },
	}
	scenePlanPrompt = template.Must(template.New("scene_plan").Parse(scenePlanTemplate))
	keywordPrompt   = template.Must(template.New("keywords").Funcs(funcs).Parse(keywordTemplate))
)

// buildScenePlanPrompt renders the instruction for a validated request.
func buildScenePlanPrompt(req models.ScenePlanRequest) (string, error) {
	data := struct {
		Prompt              string
		AspectRatio         models.AspectRatio
		Duration            string
		SceneCount          int
		Transitions         string
		SubtitleTransitions string
	}{
		Prompt:              req.Prompt,
		AspectRatio:         req.AspectRatio,
		Duration:            formatSeconds(req.TargetDurationSeconds),
		SceneCount:          req.DesiredSceneCount,
		Transitions:         quoteList(enumValues(models.TransitionTypes)),
		SubtitleTransitions: quoteList(enumValues(models.SubtitleTransitions)),
	}

	var buf bytes.Buffer
	if err := scenePlanPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render scene plan prompt: %w", err)
	}
	return buf.String(), nil
}

func buildKeywordPrompt(req models.KeywordSuggestionRequest) (string, error) {
	data := struct {
		Description string
		Existing    []string
		New         []string
	}{
		Description: strings.TrimSpace(req.SceneDescription),
		Existing:    req.ExistingKeywords,
		New:         req.NewKeywords,
	}

	var buf bytes.Buffer
	if err := keywordPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render keyword prompt: %w", err)
	}
	return buf.String(), nil
}

// formatSeconds prints 60 as "60" and 62.5 as "62.5".
func formatSeconds(s float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", s), "0"), ".")
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
