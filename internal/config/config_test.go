package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORYBOARD_CONFIG", "")
	t.Setenv("GIN_MODE", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Generation.MinPromptLength != 10 {
		t.Errorf("MinPromptLength = %d, want 10", cfg.Generation.MinPromptLength)
	}
	if cfg.Generation.MinSceneCount != 1 || cfg.Generation.MaxSceneCount != 30 {
		t.Errorf("scene bounds = %d-%d, want 1-30", cfg.Generation.MinSceneCount, cfg.Generation.MaxSceneCount)
	}
	if cfg.Generation.DefaultSceneCount != 6 {
		t.Errorf("DefaultSceneCount = %d, want 6", cfg.Generation.DefaultSceneCount)
	}
	if cfg.Media.MaxQueryTerms != 8 || cfg.Media.MaxQueryLength != 100 {
		t.Errorf("query bounds = %d/%d, want 8/100", cfg.Media.MaxQueryTerms, cfg.Media.MaxQueryLength)
	}
	if cfg.RenderAllowPrivateHosts {
		t.Error("RenderAllowPrivateHosts should default to false")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storyboard.yaml")
	content := `generation:
  min_prompt_length: 20
  max_scene_count: 12
media:
  cache_ttl: 90s
  pixabay_per_minute: 50
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STORYBOARD_CONFIG", path)
	t.Setenv("GIN_MODE", "test")
	t.Setenv("MAX_SCENE_COUNT", "15")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("RENDER_ALLOW_PRIVATE_HOSTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Generation.MinPromptLength != 20 {
		t.Errorf("MinPromptLength = %d, want 20 from file", cfg.Generation.MinPromptLength)
	}
	if cfg.Generation.MaxSceneCount != 15 {
		t.Errorf("MaxSceneCount = %d, want env override 15", cfg.Generation.MaxSceneCount)
	}
	if cfg.Generation.MinSceneCount != 1 {
		t.Errorf("MinSceneCount = %d, want default 1 kept", cfg.Generation.MinSceneCount)
	}
	if cfg.Media.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.Media.CacheTTL)
	}
	if cfg.Media.PixabayPerMinute != 50 {
		t.Errorf("PixabayPerMinute = %d, want 50", cfg.Media.PixabayPerMinute)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !cfg.OtelEnabled {
		t.Error("OtelEnabled should be true")
	}
	if !cfg.RenderAllowPrivateHosts {
		t.Error("RenderAllowPrivateHosts should be true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"inverted scene bounds", func(c *Config) { c.Generation.MaxSceneCount = 0 }, "scene count bounds"},
		{"default outside bounds", func(c *Config) { c.Generation.DefaultSceneCount = 40 }, "default_scene_count"},
		{"zero min duration", func(c *Config) { c.Generation.MinDurationSeconds = 0 }, "duration bounds"},
		{"zero prompt length", func(c *Config) { c.Generation.MinPromptLength = 0 }, "min_prompt_length"},
		{"unknown gin mode", func(c *Config) { c.GinMode = "production" }, "GIN_MODE"},
		{"release with dev jwt", func(c *Config) { c.GinMode = "release" }, "JWT_SECRET"},
		{"release with dev secrets key", func(c *Config) {
			c.GinMode = "release"
			c.JWTSecret = "real"
		}, "SECRETS_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
