package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/genai"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
)

// fakeGemini serves generateContent calls with a fixed status and body.
func fakeGemini(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func candidateBody(t *testing.T, text string) string {
	t.Helper()
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestGenerateJSON(t *testing.T) {
	var calls int32
	srv := fakeGemini(t, http.StatusOK, candidateBody(t, `[{"title":"Dawn"}]`), &calls)

	g := NewGemini("gemini-2.5-flash", srv.URL)
	out, err := g.GenerateJSON(context.Background(), Request{
		APIKey: "test-key",
		Prompt: "describe a scene",
		Schema: &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeObject}},
	})
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if out != `[{"title":"Dawn"}]` {
		t.Errorf("GenerateJSON() = %q", out)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGenerateJSONMissingKey(t *testing.T) {
	var calls int32
	srv := fakeGemini(t, http.StatusOK, candidateBody(t, "[]"), &calls)

	g := NewGemini("gemini-2.5-flash", srv.URL)
	_, err := g.GenerateJSON(context.Background(), Request{Prompt: "anything"})

	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("error kind = %q, want configuration", apperr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "geminiApiKey") {
		t.Errorf("error %q should name the missing credential", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want no network call", calls)
	}
}

func TestGenerateJSONErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperr.Kind
	}{
		{
			name:     "invalid key on 400",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			wantKind: apperr.KindConfiguration,
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			body:     `{"error":{"code":403,"message":"permission denied","status":"PERMISSION_DENIED"}}`,
			wantKind: apperr.KindConfiguration,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`,
			wantKind: apperr.KindProvider,
		},
		{
			name:     "quota",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`,
			wantKind: apperr.KindProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := fakeGemini(t, tt.status, tt.body, &calls)

			g := NewGemini("gemini-2.5-flash", srv.URL)
			_, err := g.GenerateJSON(context.Background(), Request{APIKey: "test-key", Prompt: "p"})
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestGenerateJSONEmptyOutput(t *testing.T) {
	var calls int32
	srv := fakeGemini(t, http.StatusOK, `{"candidates":[]}`, &calls)

	g := NewGemini("gemini-2.5-flash", srv.URL)
	_, err := g.GenerateJSON(context.Background(), Request{APIKey: "test-key", Prompt: "p"})
	if !apperr.Is(err, apperr.KindGeneration) {
		t.Fatalf("kind = %q, want generation (err: %v)", apperr.KindOf(err), err)
	}
}
