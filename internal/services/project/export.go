package project

import (
	"fmt"
	"math"
	"strings"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// Payload builds the document handed to the rendering backend: the project
// plus render options derived from the owner's settings.
func Payload(p *models.Project, cfg *models.UserConfig, notes string) models.ExportPayload {
	return models.ExportPayload{
		Project:       *p,
		RenderOptions: cfg.RenderOptions(notes),
	}
}

// SRT renders one subtitle cue per scene, timed by cumulative scene
// durations, with the narration as cue text.
func SRT(p *models.Project) string {
	var sb strings.Builder
	var start float64

	cue := 1
	for _, s := range p.Scenes {
		end := start + s.DurationSeconds
		text := strings.TrimSpace(s.Narration)
		if text == "" {
			start = end
			continue
		}
		sb.WriteString(fmt.Sprintf("%d\n", cue))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatSRTTime(start), formatSRTTime(end)))
		sb.WriteString(text)
		sb.WriteString("\n\n")
		start = end
		cue++
	}
	return sb.String()
}

// Markdown renders a storyboard sheet: a header table followed by one
// section per scene.
func Markdown(p *models.Project) string {
	var sb strings.Builder

	total := models.ScenePlan(p.Scenes).TotalDuration()
	sb.WriteString(fmt.Sprintf("# %s\n\n", p.Name))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Aspect ratio | %s |\n", p.AspectRatio))
	sb.WriteString(fmt.Sprintf("| Scenes | %d |\n", len(p.Scenes)))
	sb.WriteString(fmt.Sprintf("| Duration | %s (target %s) |\n", formatDuration(total), formatDuration(p.TargetDurationSeconds)))
	if p.GlobalBgAudio != nil {
		sb.WriteString(fmt.Sprintf("| Background audio | [%s](%s) |\n", p.GlobalBgAudio.Title, p.GlobalBgAudio.URL))
	}
	sb.WriteString(fmt.Sprintf("| Created | %s |\n", p.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n## Prompt\n\n")
	sb.WriteString(p.Prompt)
	sb.WriteString("\n")

	var start float64
	for i, s := range p.Scenes {
		end := start + s.DurationSeconds
		sb.WriteString(fmt.Sprintf("\n---\n\n## Scene %d: %s\n\n", i+1, s.Title))
		sb.WriteString(fmt.Sprintf("*%s – %s · transition %s · subtitles %s*\n\n",
			formatSRTTime(start), formatSRTTime(end), s.TransitionType, s.SubtitleTransition))
		sb.WriteString(fmt.Sprintf("> %s\n\n", s.Narration))
		sb.WriteString(fmt.Sprintf("- Visual keywords: %s\n", s.VisualKeywords))
		sb.WriteString(fmt.Sprintf("- Audio keywords: %s\n", s.AudioKeywords))
		writeMediaLine(&sb, "Visual", s.SelectedVisual)
		writeMediaLine(&sb, "Transition visual", s.TransitionVisual)
		writeMediaLine(&sb, "Narration video", s.NarrationVideo)
		writeMediaLine(&sb, "Audio", s.SelectedAudio)
		if s.CallToAction != "" {
			sb.WriteString(fmt.Sprintf("- Call to action: %s\n", s.CallToAction))
		}
		start = end
	}
	return sb.String()
}

func writeMediaLine(sb *strings.Builder, label string, m *models.MediaResult) {
	if m == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("- %s: [%s](%s)\n", label, m.Title, m.URL))
}

// formatSRTTime converts seconds to SRT timestamp format: HH:MM:SS,mmm
func formatSRTTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// Round to whole milliseconds first so sums like 0.1+0.2 don't drift.
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

// formatDuration converts seconds to a human-readable duration string.
func formatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
