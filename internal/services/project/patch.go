package project

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

const maxNameLength = 200

// ApplyProjectPatch applies patch to p. On error p may be partially
// modified; callers run it inside a transaction that is discarded.
func ApplyProjectPatch(p *models.Project, patch models.ProjectPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return apperr.Validation("name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return apperr.Validation("name must be at most %d characters", maxNameLength)
		}
		p.Name = name
	}

	if patch.AspectRatio != nil {
		if !patch.AspectRatio.Valid() {
			return apperr.Validation("aspectRatio must be %q or %q", models.AspectHorizontal, models.AspectVertical)
		}
		p.AspectRatio = *patch.AspectRatio
	}

	switch {
	case patch.ClearGlobalBgAudio:
		p.GlobalBgAudio = nil
	case patch.GlobalBgAudio != nil:
		if err := validateMedia("globalBgAudio", patch.GlobalBgAudio, models.MediaAudio); err != nil {
			return err
		}
		track := *patch.GlobalBgAudio
		p.GlobalBgAudio = &track
	}

	if patch.SceneOrder != nil {
		reordered, err := reorderScenes(p.Scenes, patch.SceneOrder)
		if err != nil {
			return err
		}
		p.Scenes = reordered
	}
	return nil
}

// reorderScenes returns scenes in the order given by ids, which must name
// every scene exactly once.
func reorderScenes(scenes []models.Scene, ids []string) ([]models.Scene, error) {
	if len(ids) != len(scenes) {
		return nil, apperr.Validation("sceneOrder must list all %d scenes", len(scenes))
	}

	byID := make(map[string]models.Scene, len(scenes))
	for _, s := range scenes {
		byID[s.ID] = s
	}

	out := make([]models.Scene, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, apperr.Validation("sceneOrder contains unknown scene %q", id)
		}
		if seen[id] {
			return nil, apperr.Validation("sceneOrder lists scene %q twice", id)
		}
		seen[id] = true
		out = append(out, s)
	}
	return out, nil
}

// ApplyScenePatch applies patch to s.
//
// Choosing an audio clip (selectedAudio) also makes it the scene's
// background audio, unless the same patch sets bgAudio explicitly.
func ApplyScenePatch(s *models.Scene, patch models.ScenePatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return apperr.Validation("title cannot be empty")
		}
		s.Title = title
	}
	if patch.Narration != nil {
		narration := strings.TrimSpace(*patch.Narration)
		if narration == "" {
			return apperr.Validation("narration cannot be empty")
		}
		s.Narration = narration
	}
	if patch.DurationSeconds != nil {
		d := *patch.DurationSeconds
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return apperr.Validation("durationSeconds must be a positive number")
		}
		s.DurationSeconds = d
	}
	if patch.VisualKeywords != nil {
		s.VisualKeywords = strings.TrimSpace(*patch.VisualKeywords)
	}
	if patch.AudioKeywords != nil {
		s.AudioKeywords = strings.TrimSpace(*patch.AudioKeywords)
	}
	if patch.TransitionType != nil {
		if !patch.TransitionType.Valid() {
			return apperr.Validation("transitionType must be one of %v", models.TransitionTypes)
		}
		s.TransitionType = *patch.TransitionType
	}
	if patch.SubtitleTransition != nil {
		if !patch.SubtitleTransition.Valid() {
			return apperr.Validation("subtitleTransition must be one of %v", models.SubtitleTransitions)
		}
		s.SubtitleTransition = *patch.SubtitleTransition
	}
	if patch.CallToAction != nil {
		s.CallToAction = strings.TrimSpace(*patch.CallToAction)
	}

	for _, field := range patch.ClearMedia {
		slot := mediaSlot(s, field)
		if slot == nil {
			return apperr.Validation("clearMedia: unknown media field %q", field)
		}
		*slot = nil
	}

	media := []struct {
		field   string
		value   *models.MediaResult
		allowed []models.MediaType
	}{
		{"selectedVisual", patch.SelectedVisual, []models.MediaType{models.MediaImage, models.MediaVideo}},
		{"transitionVisual", patch.TransitionVisual, []models.MediaType{models.MediaImage, models.MediaVideo}},
		{"narrationVideo", patch.NarrationVideo, []models.MediaType{models.MediaVideo}},
		{"selectedAudio", patch.SelectedAudio, []models.MediaType{models.MediaAudio}},
		{"bgAudio", patch.BgAudio, []models.MediaType{models.MediaAudio}},
	}
	for _, m := range media {
		if m.value == nil {
			continue
		}
		if err := validateMedia(m.field, m.value, m.allowed...); err != nil {
			return err
		}
		v := *m.value
		*mediaSlot(s, m.field) = &v
	}

	if patch.SelectedAudio != nil && patch.BgAudio == nil {
		bg := *patch.SelectedAudio
		s.BgAudio = &bg
	}
	return nil
}

// mediaSlot returns the scene field named by its JSON name.
func mediaSlot(s *models.Scene, field string) **models.MediaResult {
	switch field {
	case "selectedVisual":
		return &s.SelectedVisual
	case "transitionVisual":
		return &s.TransitionVisual
	case "narrationVideo":
		return &s.NarrationVideo
	case "selectedAudio":
		return &s.SelectedAudio
	case "bgAudio":
		return &s.BgAudio
	}
	return nil
}

func validateMedia(field string, m *models.MediaResult, allowed ...models.MediaType) error {
	if strings.TrimSpace(m.URL) == "" {
		return apperr.Validation("%s.url is required", field)
	}
	if !slices.Contains(allowed, m.Type) {
		return apperr.Validation("%s must be of type %v (got %q)", field, allowed, m.Type)
	}
	return nil
}
