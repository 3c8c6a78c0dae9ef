// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// Projects and user settings are stored as whole JSON documents, so the
// JSON tags double as the storage format. The database package only
// indexes a few columns next to the document.
package models

import "time"

// AspectRatio is the frame orientation of the final video.
// Go Pattern: We use string constants instead of enums (Go doesn't have enums).
type AspectRatio string

const (
	AspectHorizontal AspectRatio = "horizontal"
	AspectVertical   AspectRatio = "vertical"
)

// Valid reports whether a is one of the supported orientations.
func (a AspectRatio) Valid() bool {
	return a == AspectHorizontal || a == AspectVertical
}

// TransitionType is the visual transition into a scene.
type TransitionType string

const (
	TransitionFade  TransitionType = "fade"
	TransitionSlide TransitionType = "slide"
	TransitionZoom  TransitionType = "zoom"
	TransitionWipe  TransitionType = "wipe"
)

// TransitionTypes lists every accepted TransitionType, in schema order.
var TransitionTypes = []TransitionType{TransitionFade, TransitionSlide, TransitionZoom, TransitionWipe}

// Valid reports whether t is an accepted transition.
func (t TransitionType) Valid() bool {
	for _, v := range TransitionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// SubtitleTransition is how the narration subtitle enters the frame.
type SubtitleTransition string

const (
	SubtitleFade  SubtitleTransition = "fade"
	SubtitleSlide SubtitleTransition = "slide"
	SubtitleNone  SubtitleTransition = "none"
)

// SubtitleTransitions lists every accepted SubtitleTransition, in schema order.
var SubtitleTransitions = []SubtitleTransition{SubtitleFade, SubtitleSlide, SubtitleNone}

// Valid reports whether s is an accepted subtitle transition.
func (s SubtitleTransition) Valid() bool {
	for _, v := range SubtitleTransitions {
		if s == v {
			return true
		}
	}
	return false
}

// MediaType identifies the kind of stock asset.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Valid reports whether m is a known media type.
func (m MediaType) Valid() bool {
	return m == MediaImage || m == MediaVideo || m == MediaAudio
}

// MediaResult is one stock asset returned by a media provider.
type MediaResult struct {
	ID              string    `json:"id"`
	Type            MediaType `json:"type"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	PreviewURL      string    `json:"previewUrl,omitempty"`
	DurationSeconds float64   `json:"durationSeconds,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
}

// Scene is one timed unit of the storyboard.
//
// The first block of fields comes from the model; the media references and
// CallToAction are filled in later while the user edits the project.
type Scene struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Narration          string             `json:"narration"`
	DurationSeconds    float64            `json:"durationSeconds"`
	VisualKeywords     string             `json:"visualKeywords"`
	AudioKeywords      string             `json:"audioKeywords"`
	TransitionType     TransitionType     `json:"transitionType"`
	SubtitleTransition SubtitleTransition `json:"subtitleTransition"`

	SelectedVisual   *MediaResult `json:"selectedVisual,omitempty"`
	TransitionVisual *MediaResult `json:"transitionVisual,omitempty"`
	NarrationVideo   *MediaResult `json:"narrationVideo,omitempty"`
	SelectedAudio    *MediaResult `json:"selectedAudio,omitempty"`
	BgAudio          *MediaResult `json:"bgAudio,omitempty"`
	CallToAction     string       `json:"callToAction,omitempty"`
}

// ScenePlan is the ordered list of scenes produced by one generation call.
// Order is exactly the order the model returned.
type ScenePlan []Scene

// TotalDuration sums the scene durations as returned (never rescaled).
func (p ScenePlan) TotalDuration() float64 {
	var total float64
	for _, s := range p {
		total += s.DurationSeconds
	}
	return total
}

// ScenePlanRequest is the user's request for a new storyboard.
type ScenePlanRequest struct {
	Prompt                string      `json:"prompt"`
	AspectRatio           AspectRatio `json:"aspectRatio"`
	TargetDurationSeconds float64     `json:"targetDurationSeconds"`
	DesiredSceneCount     int         `json:"desiredSceneCount,omitempty"`
}

// ScenePlanResponse wraps a generated plan for the HTTP API.
type ScenePlanResponse struct {
	Scenes        ScenePlan `json:"scenes"`
	TotalDuration float64   `json:"totalDurationSeconds"`
}

// KeywordSuggestionRequest asks the model to refine a scene's keywords.
type KeywordSuggestionRequest struct {
	SceneDescription string   `json:"sceneDescription"`
	ExistingKeywords []string `json:"existingKeywords"`
	NewKeywords      []string `json:"newKeywords"`
}

// KeywordSuggestionResponse always carries a non-nil list.
type KeywordSuggestionResponse struct {
	SuggestedKeywords []string `json:"suggestedKeywords"`
}

// Project is the persisted aggregate: request parameters plus the scene plan.
type Project struct {
	ID                    string       `json:"id"`
	OwnerID               string       `json:"ownerId"`
	Name                  string       `json:"name"`
	Prompt                string       `json:"prompt"`
	AspectRatio           AspectRatio  `json:"aspectRatio"`
	TargetDurationSeconds float64      `json:"targetDurationSeconds"`
	DesiredSceneCount     int          `json:"desiredSceneCount"`
	Scenes                []Scene      `json:"scenes"`
	GlobalBgAudio         *MediaResult `json:"globalBgAudio,omitempty"`
	CreatedAt             time.Time    `json:"createdAt"`
	UpdatedAt             time.Time    `json:"updatedAt"`
}

// SceneIndex returns the position of the scene with the given id, or -1.
func (p *Project) SceneIndex(sceneID string) int {
	for i := range p.Scenes {
		if p.Scenes[i].ID == sceneID {
			return i
		}
	}
	return -1
}

// ProjectSummary is the lightweight listing view of a project.
type ProjectSummary struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	AspectRatio          AspectRatio `json:"aspectRatio"`
	SceneCount           int         `json:"sceneCount"`
	TotalDurationSeconds float64     `json:"totalDurationSeconds"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// Summary builds the listing view of p.
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:                   p.ID,
		Name:                 p.Name,
		AspectRatio:          p.AspectRatio,
		SceneCount:           len(p.Scenes),
		TotalDurationSeconds: ScenePlan(p.Scenes).TotalDuration(),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// ProjectPatch is a partial update of project-level fields.
// Go Pattern: nil pointer = "leave unchanged". This keeps partial updates
// typed instead of passing map[string]any around.
type ProjectPatch struct {
	Name          *string      `json:"name,omitempty"`
	AspectRatio   *AspectRatio `json:"aspectRatio,omitempty"`
	GlobalBgAudio *MediaResult `json:"globalBgAudio,omitempty"`
	// ClearGlobalBgAudio removes the background track; it wins over GlobalBgAudio.
	ClearGlobalBgAudio bool `json:"clearGlobalBgAudio,omitempty"`
	// SceneOrder, when set, must be a permutation of the current scene ids.
	SceneOrder []string `json:"sceneOrder,omitempty"`
}

// ScenePatch is a partial update of one scene.
type ScenePatch struct {
	Title              *string             `json:"title,omitempty"`
	Narration          *string             `json:"narration,omitempty"`
	DurationSeconds    *float64            `json:"durationSeconds,omitempty"`
	VisualKeywords     *string             `json:"visualKeywords,omitempty"`
	AudioKeywords      *string             `json:"audioKeywords,omitempty"`
	TransitionType     *TransitionType     `json:"transitionType,omitempty"`
	SubtitleTransition *SubtitleTransition `json:"subtitleTransition,omitempty"`
	SelectedVisual     *MediaResult        `json:"selectedVisual,omitempty"`
	TransitionVisual   *MediaResult        `json:"transitionVisual,omitempty"`
	NarrationVideo     *MediaResult        `json:"narrationVideo,omitempty"`
	SelectedAudio      *MediaResult        `json:"selectedAudio,omitempty"`
	BgAudio            *MediaResult        `json:"bgAudio,omitempty"`
	CallToAction       *string             `json:"callToAction,omitempty"`
	// ClearMedia names media fields to remove (e.g. "selectedVisual").
	ClearMedia []string `json:"clearMedia,omitempty"`
}

// RenderOptions tells the rendering backend how to voice and assemble a project.
type RenderOptions struct {
	TTSProvider TTSProvider `json:"ttsProvider"`
	VoiceID     string      `json:"voiceId"`
	Engine      string      `json:"engine,omitempty"`
	Model       string      `json:"model"`
	Notes       string      `json:"notes"`
}

// ExportPayload is the JSON document handed to the rendering backend.
// Go Pattern: Embedding Project flattens its fields into the payload.
type ExportPayload struct {
	Project
	RenderOptions RenderOptions `json:"renderOptions"`
}

// RenderSubmission is the result of posting an export to the render backend.
type RenderSubmission struct {
	ProjectID   string    `json:"projectId"`
	BackendURL  string    `json:"backendUrl"`
	StatusCode  int       `json:"statusCode"`
	Response    string    `json:"response,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// MediaSearchResponse wraps a stock media search.
type MediaSearchResponse struct {
	Query   string        `json:"query"`
	Type    MediaType     `json:"type"`
	Results []MediaResult `json:"results"`
}

// ProjectListResponse is returned by the project listing endpoint.
type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
	Total    int              `json:"total"`
}

// RenderRequest is the optional body of a render submission.
type RenderRequest struct {
	Notes string `json:"notes"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
