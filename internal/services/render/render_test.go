package render

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

func testPayload() models.ExportPayload {
	return models.ExportPayload{
		Project: models.Project{
			ID:   "p1",
			Name: "Rainforest",
			Scenes: []models.Scene{
				{ID: "s1", Title: "Dawn", Narration: "The forest wakes.", DurationSeconds: 10},
			},
		},
		RenderOptions: models.RenderOptions{TTSProvider: "gTTS", VoiceID: "gTTS-default", Model: "gemini-2.5-flash"},
	}
}

func TestSubmit(t *testing.T) {
	var gotAuth, gotSig string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSig = r.Header.Get("X-Storyboard-Signature")
		raw, _ := io.ReadAll(r.Body)
		if gotSig != SignPayload(raw, "render-key") {
			t.Errorf("signature mismatch")
		}
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"job-9"}`))
	}))
	defer srv.Close()

	sub, err := New(nil, nil).AllowPrivateHosts().Submit(context.Background(), Target{URL: srv.URL + "/render", APIKey: "render-key"}, testPayload())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if sub.StatusCode != http.StatusAccepted || sub.Response != `{"jobId":"job-9"}` || sub.ProjectID != "p1" {
		t.Errorf("submission = %+v", sub)
	}
	if gotAuth != "Bearer render-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["id"] != "p1" || gotBody["renderOptions"] == nil {
		t.Errorf("body = %v", gotBody)
	}
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		url      string
		wantKind apperr.Kind
	}{
		{"no url", 0, "", apperr.KindConfiguration},
		{"relative url", 0, "/render", apperr.KindConfiguration},
		{"unauthorized", http.StatusUnauthorized, "server", apperr.KindConfiguration},
		{"server error", http.StatusBadGateway, "server", apperr.KindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			target := tt.url
			if target == "server" {
				target = srv.URL
			}
			_, err := New(nil, nil).AllowPrivateHosts().Submit(context.Background(), Target{URL: target}, testPayload())
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("KindOf(%v) = %s, want %s", err, apperr.KindOf(err), tt.wantKind)
			}
			if tt.url == "server" && calls != 1 {
				t.Errorf("calls = %d, want exactly one attempt", calls)
			}
		})
	}
}

func TestSubmitRejectsPrivateAddresses(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	targets := []string{
		srv.URL + "/render",
		"http://10.0.0.5/render",
		"http://192.168.1.20:8080/render",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/render",
		"http://0.0.0.0/render",
		"http://localhost/render",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			_, err := New(nil, nil).Submit(context.Background(), Target{URL: target}, testPayload())
			if apperr.KindOf(err) != apperr.KindConfiguration {
				t.Errorf("KindOf(%v) = %s, want %s", err, apperr.KindOf(err), apperr.KindConfiguration)
			}
		})
	}
	if calls != 0 {
		t.Errorf("calls = %d, want no request to reach a local server", calls)
	}
}

func TestCheckDialBlocksResolvedPrivateAddress(t *testing.T) {
	s := New(nil, nil)
	if err := s.checkDial("tcp", "127.0.0.1:443", nil); err == nil {
		t.Error("checkDial(127.0.0.1) = nil, want error")
	}
	if err := s.checkDial("tcp", "93.184.216.34:443", nil); err != nil {
		t.Errorf("checkDial(public) = %v, want nil", err)
	}
	if err := s.AllowPrivateHosts().checkDial("tcp", "127.0.0.1:443", nil); err != nil {
		t.Errorf("checkDial with private hosts allowed = %v, want nil", err)
	}
}
