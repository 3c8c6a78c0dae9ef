package media

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

const (
	pixabayImagePageSize = 12
	pixabayVideoPageSize = 8
)

// Pixabay searches photos and videos on pixabay.com.
type Pixabay struct {
	httpProvider
}

// NewPixabay creates a Pixabay provider.
func NewPixabay(cfg ProviderConfig) *Pixabay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://pixabay.com"
	}
	return &Pixabay{httpProvider: newHTTPProvider("Pixabay", "pixabayKey", cfg)}
}

func (p *Pixabay) Name() string { return "pixabay" }

func (p *Pixabay) Supports(t models.MediaType) bool {
	return t == models.MediaImage || t == models.MediaVideo
}

type pixabayImageResponse struct {
	TotalHits int `json:"totalHits"`
	Hits      []struct {
		ID            int    `json:"id"`
		Tags          string `json:"tags"`
		PreviewURL    string `json:"previewURL"`
		WebformatURL  string `json:"webformatURL"`
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

type pixabayVideoFile struct {
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Thumbnail string `json:"thumbnail"`
}

type pixabayVideoResponse struct {
	TotalHits int `json:"totalHits"`
	Hits      []struct {
		ID        int     `json:"id"`
		Tags      string  `json:"tags"`
		Duration  float64 `json:"duration"`
		PictureID string  `json:"picture_id"`
		Videos    struct {
			Large  pixabayVideoFile `json:"large"`
			Medium pixabayVideoFile `json:"medium"`
			Small  pixabayVideoFile `json:"small"`
			Tiny   pixabayVideoFile `json:"tiny"`
		} `json:"videos"`
	} `json:"hits"`
}

// Search queries the image or video endpoint depending on req.Type.
func (p *Pixabay) Search(ctx context.Context, req SearchRequest) ([]models.MediaResult, error) {
	query, err := p.prepare(req)
	if err != nil {
		return nil, err
	}

	var results []models.MediaResult
	if req.Type == models.MediaVideo {
		results, err = p.searchVideos(ctx, query, req)
	} else {
		results, err = p.searchImages(ctx, query, req)
	}
	if err != nil {
		return nil, err
	}

	// Pixabay's minimum page size is 3.
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func (p *Pixabay) searchImages(ctx context.Context, query string, req SearchRequest) ([]models.MediaResult, error) {
	params := url.Values{}
	params.Set("key", req.APIKey)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(pageSize(req.Limit, pixabayImagePageSize)))
	params.Set("image_type", "photo")
	params.Set("safesearch", "true")

	var resp pixabayImageResponse
	if err := p.getJSON(ctx, p.baseURL+"/api/?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	results := make([]models.MediaResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, models.MediaResult{
			ID:         strconv.Itoa(hit.ID),
			Type:       models.MediaImage,
			Title:      firstNonEmpty(hit.Tags, "Pixabay Image"),
			URL:        firstNonEmpty(hit.LargeImageURL, hit.WebformatURL),
			PreviewURL: hit.PreviewURL,
			Tags:       splitTags(hit.Tags),
		})
	}
	return results, nil
}

func (p *Pixabay) searchVideos(ctx context.Context, query string, req SearchRequest) ([]models.MediaResult, error) {
	params := url.Values{}
	params.Set("key", req.APIKey)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(pageSize(req.Limit, pixabayVideoPageSize)))
	params.Set("safesearch", "true")

	var resp pixabayVideoResponse
	if err := p.getJSON(ctx, p.baseURL+"/api/videos/?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	results := make([]models.MediaResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		preview := hit.Videos.Medium.Thumbnail
		if preview == "" && hit.PictureID != "" {
			preview = "https://i.vimeocdn.com/video/" + hit.PictureID + "_295x166.jpg"
		}
		results = append(results, models.MediaResult{
			ID:              strconv.Itoa(hit.ID),
			Type:            models.MediaVideo,
			Title:           firstNonEmpty(hit.Tags, "Pixabay Video"),
			URL:             firstNonEmpty(hit.Videos.Medium.URL, hit.Videos.Small.URL),
			PreviewURL:      preview,
			DurationSeconds: hit.Duration,
			Tags:            splitTags(hit.Tags),
		})
	}
	return results, nil
}

// pageSize clamps a requested limit to Pixabay's accepted range (3-200).
func pageSize(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit < 3 {
		return 3
	}
	if limit > 200 {
		return 200
	}
	return limit
}
