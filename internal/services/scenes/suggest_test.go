package scenes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

func suggestionRequest() models.KeywordSuggestionRequest {
	return models.KeywordSuggestionRequest{
		SceneDescription: "A toucan perched above a misty river",
		ExistingKeywords: []string{"toucan", "river"},
		NewKeywords:      []string{"mist", "morning light"},
	}
}

func TestSuggest(t *testing.T) {
	m := &fakeModel{output: `{"suggestedKeywords":["toucan close up","misty river, dawn","Toucan close up"," "]}`}
	r := NewRefiner(m, logging.Nop())

	got := r.Suggest(context.Background(), suggestionRequest(), testCreds)

	want := []string{"toucan close up", "misty river", "dawn"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}

	prompt := m.requests[0].Prompt
	for _, fragment := range []string{"A toucan perched above a misty river", "toucan, river", "mist, morning light"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}

func TestSuggestFallsBackToEmptyList(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		creds Credentials
	}{
		{"transport error", &fakeModel{err: errors.New("dial tcp: connection refused")}, testCreds},
		{"schema mismatch", &fakeModel{output: `{"keywords":"a,b"}`}, testCreds},
		{"wrong type", &fakeModel{output: `{"suggestedKeywords":"a,b"}`}, testCreds},
		{"absent output", &fakeModel{output: ""}, testCreds},
		{"missing key", &fakeModel{output: `{"suggestedKeywords":["a"]}`}, Credentials{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRefiner(tt.model, logging.Nop()).Suggest(context.Background(), suggestionRequest(), tt.creds)
			if got == nil {
				t.Fatal("Suggest() returned nil, want empty list")
			}
			if len(got) != 0 {
				t.Errorf("Suggest() = %v, want []", got)
			}
		})
	}
}
