package project

import (
	"context"
	"errors"
	"strings"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/database"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/scenes"
)

// Store persists project documents. *database.DB implements it.
type Store interface {
	UpsertProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, ownerID, id string) (*models.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, ownerID, id string, fn func(p *models.Project) error) (*models.Project, error)
	DeleteProject(ctx context.Context, ownerID, id string) error
}

// PlanGenerator produces scene plans. *scenes.Generator implements it.
type PlanGenerator interface {
	Validate(req models.ScenePlanRequest) (models.ScenePlanRequest, error)
	Generate(ctx context.Context, req models.ScenePlanRequest, creds scenes.Credentials) (models.ScenePlan, error)
}

// TrackFinder finds a background track. *media.Service implements it.
type TrackFinder interface {
	BackgroundTrack(ctx context.Context, seed, apiKey string) (*models.MediaResult, error)
}

// CreateOptions carries the caller's credentials for one Create call.
type CreateOptions struct {
	Credentials scenes.Credentials
	// FreesoundKey enables the background audio prefetch when set.
	FreesoundKey string
}

// Service creates, loads and edits projects.
type Service struct {
	store     Store
	generator PlanGenerator
	tracks    TrackFinder
	assembler *Assembler
	log       *logging.Logger
}

// NewService wires the project service. tracks may be nil to disable the
// background audio prefetch.
func NewService(store Store, generator PlanGenerator, tracks TrackFinder, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		store:     store,
		generator: generator,
		tracks:    tracks,
		assembler: NewAssembler(),
		log:       log,
	}
}

// Create generates a plan for req, assembles it into a project and stores
// it. The write is awaited: a storage failure is returned as a persistence
// error and no project is reported as created.
func (s *Service) Create(ctx context.Context, ownerID string, req models.ScenePlanRequest, opts CreateOptions) (*models.Project, error) {
	req, err := s.generator.Validate(req)
	if err != nil {
		return nil, err
	}

	plan, err := s.generator.Generate(ctx, req, opts.Credentials)
	if err != nil {
		return nil, err
	}

	p := s.assembler.Assemble(req, plan, ownerID)
	s.prefetchBackgroundAudio(ctx, p, opts.FreesoundKey)

	if err := s.store.UpsertProject(ctx, p); err != nil {
		s.log.Error("failed to save project", "owner_id", ownerID, "project_id", p.ID, "error", err)
		return nil, apperr.Persistence(err, "failed to save project")
	}

	s.log.Info("📽  Project created", "owner_id", ownerID, "project_id", p.ID, "scenes", len(p.Scenes))
	return p, nil
}

// prefetchBackgroundAudio picks one Freesound track for the whole project,
// seeded by the first scene's audio keywords (or the prompt). Failures are
// logged and ignored.
func (s *Service) prefetchBackgroundAudio(ctx context.Context, p *models.Project, apiKey string) {
	if s.tracks == nil || strings.TrimSpace(apiKey) == "" {
		return
	}

	seed := p.Prompt
	if len(p.Scenes) > 0 && strings.TrimSpace(p.Scenes[0].AudioKeywords) != "" {
		seed = p.Scenes[0].AudioKeywords
	}

	track, err := s.tracks.BackgroundTrack(ctx, seed, apiKey)
	if err != nil {
		s.log.Warn("background audio prefetch failed", "project_id", p.ID, "error", err)
		return
	}
	p.GlobalBgAudio = track
}

// Get loads one of the owner's projects.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// List returns summaries of the owner's projects, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.ProjectSummary, error) {
	projects, err := s.store.ListProjects(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}
	summaries := make([]models.ProjectSummary, 0, len(projects))
	for i := range projects {
		summaries = append(summaries, projects[i].Summary())
	}
	return summaries, nil
}

// Update applies a project-level patch.
func (s *Service) Update(ctx context.Context, ownerID, id string, patch models.ProjectPatch) (*models.Project, error) {
	p, err := s.store.UpdateProject(ctx, ownerID, id, func(p *models.Project) error {
		return ApplyProjectPatch(p, patch)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// UpdateScene applies a patch to one scene of a project.
func (s *Service) UpdateScene(ctx context.Context, ownerID, id, sceneID string, patch models.ScenePatch) (*models.Project, error) {
	p, err := s.store.UpdateProject(ctx, ownerID, id, func(p *models.Project) error {
		i := p.SceneIndex(sceneID)
		if i < 0 {
			return apperr.NotFound("scene %s not found", sceneID)
		}
		return ApplyScenePatch(&p.Scenes[i], patch)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteProject(ctx, ownerID, id); err != nil {
		return storeError(err)
	}
	return nil
}

// storeError keeps typed errors, maps a missing row to not found and
// everything else to a persistence error.
func storeError(err error) error {
	var typed *apperr.Error
	switch {
	case errors.As(err, &typed):
		return err
	case errors.Is(err, database.ErrNotFound):
		return apperr.NotFound("project not found")
	default:
		return apperr.Persistence(err, "project storage failed")
	}
}
