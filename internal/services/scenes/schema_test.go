package scenes

import (
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestDecodeScenePlanRejectsInvalidScenes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "not json",
			raw:     "Here are some scenes for you!",
			wantErr: "not a JSON array",
		},
		{
			name:    "missing narration",
			raw:     `[{"title":"A","durationSeconds":5,"visualKeywords":"v","audioKeywords":"a"}]`,
			wantErr: `missing field "narration"`,
		},
		{
			name:    "blank title",
			raw:     `[{"title":"  ","narration":"n","durationSeconds":5,"visualKeywords":"v","audioKeywords":"a"}]`,
			wantErr: "title is empty",
		},
		{
			name:    "duration as string",
			raw:     `[{"title":"A","narration":"n","durationSeconds":"5","visualKeywords":"v","audioKeywords":"a"}]`,
			wantErr: "must be a number",
		},
		{
			name:    "zero duration",
			raw:     `[{"title":"A","narration":"n","durationSeconds":0,"visualKeywords":"v","audioKeywords":"a"}]`,
			wantErr: "must be positive",
		},
		{
			name:    "unknown transition",
			raw:     `[{"title":"A","narration":"n","durationSeconds":5,"visualKeywords":"v","audioKeywords":"a","transitionType":"spin"}]`,
			wantErr: "unsupported value",
		},
		{
			name:    "array of scalars",
			raw:     `[1, 2]`,
			wantErr: "not a JSON array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeScenePlan(tt.raw)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("DecodeScenePlan() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeScenePlanTolerance(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "markdown fence",
			raw:  "```json\n[{\"title\":\"A\",\"narration\":\"n\",\"durationSeconds\":4.5,\"visualKeywords\":\"v\",\"audioKeywords\":\"a\"}]\n```",
		},
		{
			name: "surrounding prose",
			raw:  "Sure! [{\"title\":\"A\",\"narration\":\"n\",\"durationSeconds\":4.5,\"visualKeywords\":\"v\",\"audioKeywords\":\"a\"}] Enjoy.",
		},
		{
			name: "scenes wrapper",
			raw:  `{"scenes":[{"title":"A","narration":"n","durationSeconds":4.5,"visualKeywords":"v","audioKeywords":"a"}]}`,
		},
		{
			name: "uppercase enum",
			raw:  `[{"title":"A","narration":"n","durationSeconds":4.5,"visualKeywords":"v","audioKeywords":"a","transitionType":"WIPE"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := DecodeScenePlan(tt.raw)
			if err != nil {
				t.Fatalf("DecodeScenePlan() error = %v", err)
			}
			if len(plan) != 1 || plan[0].Title != "A" || plan[0].DurationSeconds != 4.5 {
				t.Errorf("plan = %+v", plan)
			}
		})
	}
}

func TestScenePlanSchema(t *testing.T) {
	s := ScenePlanSchema()
	if s.Type != genai.TypeArray || s.Items == nil || s.Items.Type != genai.TypeObject {
		t.Fatalf("unexpected schema shape: %+v", s)
	}

	required := strings.Join(s.Items.Required, ",")
	if required != "title,narration,durationSeconds,visualKeywords,audioKeywords" {
		t.Errorf("required = %s", required)
	}

	transition := s.Items.Properties["transitionType"]
	if transition == nil || strings.Join(transition.Enum, ",") != "fade,slide,zoom,wipe" {
		t.Errorf("transitionType enum = %+v", transition)
	}
	if s.Items.Properties["durationSeconds"].Type != genai.TypeNumber {
		t.Error("durationSeconds should be a number")
	}
}
