package media

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

const freesoundPageSize = 10

// Freesound searches sound previews on freesound.org.
type Freesound struct {
	httpProvider
}

// NewFreesound creates a Freesound provider.
func NewFreesound(cfg ProviderConfig) *Freesound {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://freesound.org"
	}
	return &Freesound{httpProvider: newHTTPProvider("Freesound", "freesoundKey", cfg)}
}

func (f *Freesound) Name() string { return "freesound" }

func (f *Freesound) Supports(t models.MediaType) bool { return t == models.MediaAudio }

type freesoundResponse struct {
	Count   int `json:"count"`
	Results []struct {
		ID       int      `json:"id"`
		Name     string   `json:"name"`
		Duration float64  `json:"duration"`
		Tags     []string `json:"tags"`
		Previews struct {
			HQMP3 string `json:"preview-hq-mp3"`
			LQMP3 string `json:"preview-lq-mp3"`
			HQOGG string `json:"preview-hq-ogg"`
			LQOGG string `json:"preview-lq-ogg"`
		} `json:"previews"`
	} `json:"results"`
}

// Search runs a text search and returns audio previews.
func (f *Freesound) Search(ctx context.Context, req SearchRequest) ([]models.MediaResult, error) {
	query, err := f.prepare(req)
	if err != nil {
		return nil, err
	}

	size := freesoundPageSize
	if req.Limit > 0 {
		size = min(req.Limit, 150)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fields", "id,name,previews,duration,tags")
	params.Set("token", req.APIKey)
	params.Set("page_size", strconv.Itoa(size))

	var resp freesoundResponse
	if err := f.getJSON(ctx, f.baseURL+"/apiv2/search/text/?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	results := make([]models.MediaResult, 0, len(resp.Results))
	for _, hit := range resp.Results {
		results = append(results, models.MediaResult{
			ID:              strconv.Itoa(hit.ID),
			Type:            models.MediaAudio,
			Title:           firstNonEmpty(hit.Name, "Freesound Audio"),
			URL:             firstNonEmpty(hit.Previews.HQMP3, hit.Previews.LQMP3),
			PreviewURL:      firstNonEmpty(hit.Previews.HQOGG, hit.Previews.LQOGG),
			DurationSeconds: hit.Duration,
			Tags:            hit.Tags,
		})
	}
	return results, nil
}
