// Package project assembles generated scene plans into persisted projects
// and applies the user's edits to them.
package project

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// NameLength is how many characters of the prompt become the project name.
const NameLength = 50

// Assembler turns a request and its plan into a Project aggregate.
type Assembler struct {
	now   func() time.Time
	newID func() string
}

// NewAssembler returns an assembler using uuid v4 ids and the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Assemble builds a new project owned by ownerID. Scenes keep the plan's
// order; every scene and the project get fresh ids.
func (a *Assembler) Assemble(req models.ScenePlanRequest, plan models.ScenePlan, ownerID string) *models.Project {
	now := a.now().UTC()

	scenes := make([]models.Scene, len(plan))
	for i, scene := range plan {
		scene.ID = a.newID()
		if !scene.TransitionType.Valid() {
			scene.TransitionType = models.TransitionFade
		}
		if !scene.SubtitleTransition.Valid() {
			scene.SubtitleTransition = models.SubtitleFade
		}
		scenes[i] = scene
	}

	prompt := strings.TrimSpace(req.Prompt)
	return &models.Project{
		ID:                    a.newID(),
		OwnerID:               ownerID,
		Name:                  projectName(prompt),
		Prompt:                prompt,
		AspectRatio:           req.AspectRatio,
		TargetDurationSeconds: req.TargetDurationSeconds,
		DesiredSceneCount:     req.DesiredSceneCount,
		Scenes:                scenes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// projectName is the first NameLength runes of the prompt.
func projectName(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > NameLength {
		runes = runes[:NameLength]
	}
	return strings.TrimSpace(string(runes))
}
