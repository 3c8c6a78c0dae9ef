package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// Keys are the caller's provider keys, loaded from their settings per request.
type Keys struct {
	Pixabay   string
	Freesound string
}

// SceneMedia is the candidate media for one scene.
type SceneMedia struct {
	SceneID  string               `json:"sceneId"`
	Visual   []models.MediaResult `json:"visual"`
	Audio    []models.MediaResult `json:"audio"`
	Warnings []string             `json:"warnings,omitempty"`
}

// Service fronts the providers with a shared result cache.
type Service struct {
	visual Provider
	audio  Provider
	cache  Cache
	log    *logging.Logger
}

// NewService creates a media service. cache may be nil to disable caching.
func NewService(visual, audio Provider, cache Cache, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{visual: visual, audio: audio, cache: cache, log: log}
}

// CacheName reports which cache backs the service ("none" when disabled).
func (s *Service) CacheName() string {
	if s.cache == nil {
		return "none"
	}
	return s.cache.Name()
}

// PingCache checks the cache backend.
func (s *Service) PingCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Ping(ctx)
}

// SearchVisual searches images or videos.
func (s *Service) SearchVisual(ctx context.Context, query string, t models.MediaType, apiKey string) ([]models.MediaResult, error) {
	if t == "" {
		t = models.MediaImage
	}
	return s.search(ctx, s.visual, SearchRequest{Query: query, Type: t, APIKey: apiKey})
}

// SearchAudio searches audio clips.
func (s *Service) SearchAudio(ctx context.Context, query, apiKey string) ([]models.MediaResult, error) {
	return s.search(ctx, s.audio, SearchRequest{Query: query, Type: models.MediaAudio, APIKey: apiKey})
}

// BackgroundTrack returns the first audio hit for seed, or nil when there
// are none.
func (s *Service) BackgroundTrack(ctx context.Context, seed, apiKey string) (*models.MediaResult, error) {
	results, err := s.search(ctx, s.audio, SearchRequest{Query: seed, Type: models.MediaAudio, APIKey: apiKey, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	track := results[0]
	return &track, nil
}

// SuggestForScene runs the visual and audio searches for one scene
// concurrently. A half whose key is missing is skipped with a warning;
// any other failure fails the whole call.
func (s *Service) SuggestForScene(ctx context.Context, scene models.Scene, visualType models.MediaType, keys Keys) (*SceneMedia, error) {
	out := &SceneMedia{
		SceneID: scene.ID,
		Visual:  []models.MediaResult{},
		Audio:   []models.MediaResult{},
	}

	var visualWarning, audioWarning string

	// Go Pattern: errgroup cancels the sibling search on the first error
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results, err := s.SearchVisual(gctx, scene.VisualKeywords, visualType, keys.Pixabay)
		if skip, warning := skippable(err); skip {
			visualWarning = warning
			return nil
		}
		if err != nil {
			return err
		}
		out.Visual = results
		return nil
	})

	g.Go(func() error {
		results, err := s.SearchAudio(gctx, scene.AudioKeywords, keys.Freesound)
		if skip, warning := skippable(err); skip {
			audioWarning = warning
			return nil
		}
		if err != nil {
			return err
		}
		out.Audio = results
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, w := range []string{visualWarning, audioWarning} {
		if w != "" {
			out.Warnings = append(out.Warnings, w)
		}
	}
	return out, nil
}

// skippable reports whether err only means "this half cannot run" (missing
// key or keywords that normalize to nothing).
func skippable(err error) (bool, string) {
	if err == nil {
		return false, ""
	}
	switch apperr.KindOf(err) {
	case apperr.KindConfiguration, apperr.KindValidation:
		return true, apperr.Message(err)
	}
	return false, ""
}

func (s *Service) search(ctx context.Context, p Provider, req SearchRequest) ([]models.MediaResult, error) {
	if p == nil || !p.Supports(req.Type) {
		return nil, apperr.Validation("unsupported media type %q", req.Type)
	}

	key := cacheKey(p.Name(), req)
	if s.cache != nil && strings.TrimSpace(req.APIKey) != "" {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("media cache read failed", "cache", s.cache.Name(), "error", err)
		} else if ok {
			return cached, nil
		}
	}

	results, err := p.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.MediaResult{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, results); err != nil {
			s.log.Warn("media cache write failed", "cache", s.cache.Name(), "error", err)
		}
	}

	s.log.Debug("media search", "provider", p.Name(), "type", req.Type, "results", len(results))
	return results, nil
}

// cacheKey scopes entries by a hash of the API key so one owner's results
// are never served against another owner's key.
func cacheKey(provider string, req SearchRequest) string {
	sum := sha256.Sum256([]byte(req.APIKey))
	query := strings.ToLower(strings.Join(strings.Fields(req.Query), " "))
	return fmt.Sprintf("%s|%s|%d|%s|%s", provider, req.Type, req.Limit, query, hex.EncodeToString(sum[:6]))
}
