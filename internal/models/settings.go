package models

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied to a fresh UserConfig.
const (
	DefaultTextModel   = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultPollyVoice  = "Ruth"
	DefaultPollyEngine = "generative"
)

// TTSProvider selects the narration voice backend used at render time.
type TTSProvider string

const (
	TTSGoogle TTSProvider = "gTTS"
	TTSPolly  TTSProvider = "AmazonPolly"
)

// PollyEngines lists the Amazon Polly engines we expose.
var PollyEngines = []string{"standard", "neural", "generative", "long-form"}

// pollyVoiceEngines maps each supported Polly voice to the engines it can run on.
var pollyVoiceEngines = map[string][]string{
	"Joanna":  {"standard", "neural", "long-form"},
	"Matthew": {"standard", "neural", "long-form"},
	"Amy":     {"standard", "neural", "long-form"},
	"Brian":   {"standard", "neural", "long-form"},
	"Emma":    {"standard", "neural", "long-form"},
	"Ivy":     {"standard", "neural"},
	"Ruth":    {"generative", "long-form"},
	"Stephen": {"generative", "long-form"},
}

// PollyVoiceSupports reports whether voice can be rendered with engine.
func PollyVoiceSupports(voice, engine string) bool {
	for _, e := range pollyVoiceEngines[voice] {
		if e == engine {
			return true
		}
	}
	return false
}

// UserConfig is the per-owner settings document. Secret fields are sealed by
// the database layer before they are written.
type UserConfig struct {
	OwnerID string `json:"ownerId"`

	GeminiAPIKey     string `json:"geminiApiKey,omitempty"`
	PixabayKey       string `json:"pixabayKey,omitempty"`
	FreesoundKey     string `json:"freesoundKey,omitempty"`
	GeminiTextModel  string `json:"geminiTextModel,omitempty"`
	GeminiImageModel string `json:"geminiImageModel,omitempty"`

	TTSProvider TTSProvider `json:"ttsProvider,omitempty"`
	PollyVoice  string      `json:"pollyVoice,omitempty"`
	PollyEngine string      `json:"pollyEngine,omitempty"`

	AWSAccessKeyID     string `json:"awsAccessKeyId,omitempty"`
	AWSSecretAccessKey string `json:"awsSecretAccessKey,omitempty"`
	AWSRegion          string `json:"awsRegion,omitempty"`

	OutputDirectory     string `json:"outputDirectory,omitempty"`
	RenderBackendURL    string `json:"renderBackendUrl,omitempty"`
	RenderBackendAPIKey string `json:"renderBackendApiKey,omitempty"`

	ChannelName string            `json:"channelName,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserConfig returns the defaults for an owner with no saved settings.
func NewUserConfig(ownerID string) *UserConfig {
	return &UserConfig{
		OwnerID:          ownerID,
		GeminiTextModel:  DefaultTextModel,
		GeminiImageModel: DefaultImageModel,
		TTSProvider:      TTSGoogle,
		PollyVoice:       DefaultPollyVoice,
		PollyEngine:      DefaultPollyEngine,
	}
}

// TextModel returns the configured text model or the default.
func (c *UserConfig) TextModel() string {
	if strings.TrimSpace(c.GeminiTextModel) == "" {
		return DefaultTextModel
	}
	return c.GeminiTextModel
}

// RenderOptions derives the render options for an export of this owner's project.
func (c *UserConfig) RenderOptions(notes string) RenderOptions {
	opts := RenderOptions{
		TTSProvider: c.TTSProvider,
		Model:       c.TextModel(),
		Notes:       notes,
	}
	if c.TTSProvider == TTSPolly {
		opts.VoiceID = c.PollyVoice
		opts.Engine = c.PollyEngine
	} else {
		opts.TTSProvider = TTSGoogle
		opts.VoiceID = "gTTS-default"
	}
	return opts
}

// UserConfigPatch is a partial settings update; nil fields are left unchanged
// and an empty string clears a field.
type UserConfigPatch struct {
	GeminiAPIKey        *string           `json:"geminiApiKey,omitempty"`
	PixabayKey          *string           `json:"pixabayKey,omitempty"`
	FreesoundKey        *string           `json:"freesoundKey,omitempty"`
	GeminiTextModel     *string           `json:"geminiTextModel,omitempty"`
	GeminiImageModel    *string           `json:"geminiImageModel,omitempty"`
	TTSProvider         *TTSProvider      `json:"ttsProvider,omitempty"`
	PollyVoice          *string           `json:"pollyVoice,omitempty"`
	PollyEngine         *string           `json:"pollyEngine,omitempty"`
	AWSAccessKeyID      *string           `json:"awsAccessKeyId,omitempty"`
	AWSSecretAccessKey  *string           `json:"awsSecretAccessKey,omitempty"`
	AWSRegion           *string           `json:"awsRegion,omitempty"`
	OutputDirectory     *string           `json:"outputDirectory,omitempty"`
	RenderBackendURL    *string           `json:"renderBackendUrl,omitempty"`
	RenderBackendAPIKey *string           `json:"renderBackendApiKey,omitempty"`
	ChannelName         *string           `json:"channelName,omitempty"`
	SocialLinks         map[string]string `json:"socialLinks,omitempty"`
}

// Apply merges p into c field by field and validates the TTS combination.
func (p *UserConfigPatch) Apply(c *UserConfig) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.GeminiAPIKey, p.GeminiAPIKey)
	set(&c.PixabayKey, p.PixabayKey)
	set(&c.FreesoundKey, p.FreesoundKey)
	set(&c.GeminiTextModel, p.GeminiTextModel)
	set(&c.GeminiImageModel, p.GeminiImageModel)
	set(&c.PollyVoice, p.PollyVoice)
	set(&c.PollyEngine, p.PollyEngine)
	set(&c.AWSAccessKeyID, p.AWSAccessKeyID)
	set(&c.AWSSecretAccessKey, p.AWSSecretAccessKey)
	set(&c.AWSRegion, p.AWSRegion)
	set(&c.OutputDirectory, p.OutputDirectory)
	set(&c.RenderBackendURL, p.RenderBackendURL)
	set(&c.RenderBackendAPIKey, p.RenderBackendAPIKey)
	set(&c.ChannelName, p.ChannelName)
	if p.TTSProvider != nil {
		c.TTSProvider = *p.TTSProvider
	}
	if p.SocialLinks != nil {
		if c.SocialLinks == nil {
			c.SocialLinks = map[string]string{}
		}
		for k, v := range p.SocialLinks {
			if strings.TrimSpace(v) == "" {
				delete(c.SocialLinks, k)
				continue
			}
			c.SocialLinks[k] = strings.TrimSpace(v)
		}
	}
	return c.Validate()
}

// Validate checks enum fields and the Polly voice/engine pairing.
func (c *UserConfig) Validate() error {
	switch c.TTSProvider {
	case "", TTSGoogle:
		return nil
	case TTSPolly:
	default:
		return fmt.Errorf("ttsProvider must be %q or %q", TTSGoogle, TTSPolly)
	}
	if _, ok := pollyVoiceEngines[c.PollyVoice]; !ok {
		return fmt.Errorf("pollyVoice %q is not supported", c.PollyVoice)
	}
	if !PollyVoiceSupports(c.PollyVoice, c.PollyEngine) {
		return fmt.Errorf("pollyVoice %q does not support the %q engine", c.PollyVoice, c.PollyEngine)
	}
	return nil
}

// UserConfigView is what the settings endpoint returns: secrets are masked.
type UserConfigView struct {
	UserConfig
	Configured map[string]bool `json:"configured"`
}

// View masks every secret in c and reports which credentials are present.
func (c *UserConfig) View() UserConfigView {
	v := UserConfigView{UserConfig: *c}
	v.Configured = map[string]bool{
		"geminiApiKey":        c.GeminiAPIKey != "",
		"pixabayKey":          c.PixabayKey != "",
		"freesoundKey":        c.FreesoundKey != "",
		"awsSecretAccessKey":  c.AWSSecretAccessKey != "",
		"renderBackendApiKey": c.RenderBackendAPIKey != "",
	}
	v.GeminiAPIKey = MaskSecret(c.GeminiAPIKey)
	v.PixabayKey = MaskSecret(c.PixabayKey)
	v.FreesoundKey = MaskSecret(c.FreesoundKey)
	v.AWSSecretAccessKey = MaskSecret(c.AWSSecretAccessKey)
	v.RenderBackendAPIKey = MaskSecret(c.RenderBackendAPIKey)
	return v
}

// MaskSecret keeps the last four characters of s.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
