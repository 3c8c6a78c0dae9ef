package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

const pixabayImages = `{"totalHits":2,"hits":[
  {"id":101,"tags":"toucan, bird, rainforest","previewURL":"https://cdn/p101.jpg","webformatURL":"https://cdn/w101.jpg","largeImageURL":"https://cdn/l101.jpg"},
  {"id":102,"tags":"","previewURL":"https://cdn/p102.jpg","webformatURL":"https://cdn/w102.jpg","largeImageURL":""}
]}`

const pixabayVideos = `{"totalHits":1,"hits":[
  {"id":7,"tags":"river, mist","duration":14,"picture_id":"555",
   "videos":{"medium":{"url":"","thumbnail":""},"small":{"url":"https://cdn/v7-small.mp4"}}}
]}`

const freesoundResults = `{"count":1,"results":[
  {"id":42,"name":"","duration":31.5,"tags":["birds","forest"],
   "previews":{"preview-lq-mp3":"https://fs/42-lq.mp3","preview-hq-ogg":"https://fs/42-hq.ogg"}}
]}`

// stubServer answers every request with status and body, recording the
// request paths and queries it saw.
func stubServer(t *testing.T, status int, body string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestPixabayImages(t *testing.T) {
	srv, seen := stubServer(t, http.StatusOK, pixabayImages)
	p := NewPixabay(ProviderConfig{BaseURL: srv.URL})

	results, err := p.Search(context.Background(), SearchRequest{
		Query:  "toucan,  rainforest canopy",
		Type:   models.MediaImage,
		APIKey: "pix-key",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	req := (*seen)[0]
	if req.URL.Path != "/api/" {
		t.Errorf("path = %s, want /api/", req.URL.Path)
	}
	q := req.URL.Query()
	if q.Get("q") != "toucan rainforest canopy" || q.Get("key") != "pix-key" || q.Get("per_page") != "12" {
		t.Errorf("unexpected query %v", q)
	}

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].URL != "https://cdn/l101.jpg" || results[0].ID != "101" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if strings.Join(results[0].Tags, "|") != "toucan|bird|rainforest" {
		t.Errorf("tags = %v", results[0].Tags)
	}
	if results[1].URL != "https://cdn/w102.jpg" || results[1].Title != "Pixabay Image" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestPixabayVideos(t *testing.T) {
	srv, seen := stubServer(t, http.StatusOK, pixabayVideos)
	p := NewPixabay(ProviderConfig{BaseURL: srv.URL})

	results, err := p.Search(context.Background(), SearchRequest{Query: "river", Type: models.MediaVideo, APIKey: "k"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if (*seen)[0].URL.Path != "/api/videos/" {
		t.Errorf("path = %s", (*seen)[0].URL.Path)
	}
	got := results[0]
	if got.URL != "https://cdn/v7-small.mp4" {
		t.Errorf("URL = %s, want small fallback", got.URL)
	}
	if got.PreviewURL != "https://i.vimeocdn.com/video/555_295x166.jpg" {
		t.Errorf("PreviewURL = %s", got.PreviewURL)
	}
	if got.DurationSeconds != 14 || got.Type != models.MediaVideo {
		t.Errorf("result = %+v", got)
	}
}

func TestFreesound(t *testing.T) {
	srv, seen := stubServer(t, http.StatusOK, freesoundResults)
	f := NewFreesound(ProviderConfig{BaseURL: srv.URL})

	results, err := f.Search(context.Background(), SearchRequest{Query: "forest birds", Type: models.MediaAudio, APIKey: "fs"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	req := (*seen)[0]
	if req.URL.Path != "/apiv2/search/text/" {
		t.Errorf("path = %s", req.URL.Path)
	}
	if req.URL.Query().Get("token") != "fs" || req.URL.Query().Get("page_size") != "10" {
		t.Errorf("query = %v", req.URL.Query())
	}

	got := results[0]
	if got.URL != "https://fs/42-lq.mp3" || got.PreviewURL != "https://fs/42-hq.ogg" {
		t.Errorf("urls = %s / %s", got.URL, got.PreviewURL)
	}
	if got.Title != "Freesound Audio" || got.DurationSeconds != 31.5 || got.ID != "42" {
		t.Errorf("result = %+v", got)
	}
}

func TestZeroHitsIsEmptyNotError(t *testing.T) {
	srv, _ := stubServer(t, http.StatusOK, `{"totalHits":0,"hits":[]}`)
	results, err := NewPixabay(ProviderConfig{BaseURL: srv.URL}).
		Search(context.Background(), SearchRequest{Query: "nothing", Type: models.MediaImage, APIKey: "k"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %#v, want empty slice", results)
	}
}

func TestProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		apiKey   string
		query    string
		wantKind apperr.Kind
		wantText string
		wantHits int
	}{
		{"missing key", http.StatusOK, "{}", "", "birds", apperr.KindConfiguration, "pixabayKey", 0},
		{"empty query", http.StatusOK, "{}", "k", " , ,, ", apperr.KindValidation, "empty", 0},
		{"invalid key 400", http.StatusBadRequest, "[ERROR 400] Invalid or missing API key", "k", "birds", apperr.KindConfiguration, "pixabayKey", 1},
		{"forbidden", http.StatusForbidden, "", "k", "birds", apperr.KindConfiguration, "rejected", 1},
		{"rate limited", http.StatusTooManyRequests, "", "k", "birds", apperr.KindProvider, "rate limit", 1},
		{"server error", http.StatusInternalServerError, "boom", "k", "birds", apperr.KindProvider, "500", 1},
		{"malformed json", http.StatusOK, "<html>", "k", "birds", apperr.KindProvider, "malformed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, seen := stubServer(t, tt.status, tt.body)
			_, err := NewPixabay(ProviderConfig{BaseURL: srv.URL}).
				Search(context.Background(), SearchRequest{Query: tt.query, Type: models.MediaImage, APIKey: tt.apiKey})

			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Fatalf("KindOf(%v) = %s, want %s", err, got, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantText)
			}
			if len(*seen) != tt.wantHits {
				t.Errorf("requests = %d, want %d", len(*seen), tt.wantHits)
			}
		})
	}
}

func TestErrorsNeverLeakKey(t *testing.T) {
	// Closed server: the transport error would normally include the full URL.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewFreesound(ProviderConfig{BaseURL: srv.URL}).
		Search(context.Background(), SearchRequest{Query: "rain", Type: models.MediaAudio, APIKey: "super-secret-token"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if strings.Contains(err.Error(), "super-secret-token") {
		t.Errorf("error leaks key: %v", err)
	}
	if apperr.KindOf(err) != apperr.KindProvider {
		t.Errorf("KindOf = %s, want provider", apperr.KindOf(err))
	}
}

func TestServiceCachesResults(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(pixabayImages))
	}))
	defer srv.Close()

	svc := NewService(NewPixabay(ProviderConfig{BaseURL: srv.URL}), nil, NewMemoryCache(time.Minute), logging.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.SearchVisual(ctx, "Toucan  bird", models.MediaImage, "k1"); err != nil {
			t.Fatalf("SearchVisual() error = %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", hits.Load())
	}

	// A different key must not share the cached entry.
	if _, err := svc.SearchVisual(ctx, "toucan bird", models.MediaImage, "k2"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("upstream hits = %d, want 2", hits.Load())
	}
}

func TestSuggestForScene(t *testing.T) {
	pix, _ := stubServer(t, http.StatusOK, pixabayImages)
	fs, _ := stubServer(t, http.StatusOK, freesoundResults)

	svc := NewService(
		NewPixabay(ProviderConfig{BaseURL: pix.URL}),
		NewFreesound(ProviderConfig{BaseURL: fs.URL}),
		nil,
		logging.Nop(),
	)
	scene := models.Scene{ID: "s1", VisualKeywords: "toucan canopy", AudioKeywords: "forest birds"}

	t.Run("both halves", func(t *testing.T) {
		got, err := svc.SuggestForScene(context.Background(), scene, models.MediaImage, Keys{Pixabay: "p", Freesound: "f"})
		if err != nil {
			t.Fatalf("SuggestForScene() error = %v", err)
		}
		if len(got.Visual) != 2 || len(got.Audio) != 1 || len(got.Warnings) != 0 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("missing audio key skips audio", func(t *testing.T) {
		got, err := svc.SuggestForScene(context.Background(), scene, models.MediaImage, Keys{Pixabay: "p"})
		if err != nil {
			t.Fatalf("SuggestForScene() error = %v", err)
		}
		if len(got.Visual) != 2 || len(got.Audio) != 0 {
			t.Errorf("got %+v", got)
		}
		if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "freesoundKey") {
			t.Errorf("warnings = %v", got.Warnings)
		}
	})
}

func TestSuggestForSceneFailsOnProviderError(t *testing.T) {
	pix, _ := stubServer(t, http.StatusInternalServerError, "down")
	fs, _ := stubServer(t, http.StatusOK, freesoundResults)

	svc := NewService(NewPixabay(ProviderConfig{BaseURL: pix.URL}), NewFreesound(ProviderConfig{BaseURL: fs.URL}), nil, nil)
	_, err := svc.SuggestForScene(context.Background(),
		models.Scene{VisualKeywords: "a", AudioKeywords: "b"}, models.MediaImage, Keys{Pixabay: "p", Freesound: "f"})
	if apperr.KindOf(err) != apperr.KindProvider {
		t.Errorf("KindOf(%v) = %s, want provider", err, apperr.KindOf(err))
	}
}

func TestBackgroundTrack(t *testing.T) {
	fs, seen := stubServer(t, http.StatusOK, freesoundResults)
	svc := NewService(nil, NewFreesound(ProviderConfig{BaseURL: fs.URL}), nil, nil)

	track, err := svc.BackgroundTrack(context.Background(), "calm ambient", "f")
	if err != nil {
		t.Fatalf("BackgroundTrack() error = %v", err)
	}
	if track == nil || track.ID != "42" {
		t.Errorf("track = %+v", track)
	}
	if (*seen)[0].URL.Query().Get("page_size") != "1" {
		t.Errorf("page_size = %s, want 1", (*seen)[0].URL.Query().Get("page_size"))
	}
}

func TestNormalizedQueryIsBounded(t *testing.T) {
	srv, seen := stubServer(t, http.StatusOK, `{"count":0,"results":[]}`)
	f := NewFreesound(ProviderConfig{BaseURL: srv.URL})

	long := strings.Repeat("waterfall ", 30)
	if _, err := f.Search(context.Background(), SearchRequest{Query: long, Type: models.MediaAudio, APIKey: "f"}); err != nil {
		t.Fatal(err)
	}
	q := (*seen)[0].URL.Query().Get("query")
	if len(strings.Fields(q)) > 8 || len(q) > 100 {
		t.Errorf("query not bounded: %q", q)
	}
}
