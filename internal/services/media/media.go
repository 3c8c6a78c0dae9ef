// Package media searches stock media providers (Pixabay for images and
// video, Freesound for audio) and maps their responses to models.MediaResult.
//
// Every search normalizes its query, needs the caller's own API key and goes
// through a per-provider rate limiter. Results are cached by Service.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/keywords"
)

// SearchRequest is one provider query.
type SearchRequest struct {
	Query  string // raw keywords; normalized by the provider
	Type   models.MediaType
	APIKey string
	Limit  int // 0 = provider default page size
}

// Provider is a stock media search backend.
type Provider interface {
	Name() string
	Supports(t models.MediaType) bool
	Search(ctx context.Context, req SearchRequest) ([]models.MediaResult, error)
}

// ProviderConfig configures an HTTP provider.
type ProviderConfig struct {
	BaseURL        string
	PerMinute      int // outbound request budget; 0 = unlimited
	MaxQueryTerms  int
	MaxQueryLength int
	HTTPClient     *http.Client
}

// httpProvider holds what every JSON-over-HTTP provider shares.
type httpProvider struct {
	name           string
	keyField       string // settings field named in configuration errors
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	maxQueryTerms  int
	maxQueryLength int
}

func newHTTPProvider(name, keyField string, cfg ProviderConfig) httpProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.PerMinute > 0 {
		// Burst of a few requests so one scene's searches don't queue.
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), 5)
	}

	maxTerms, maxLength := cfg.MaxQueryTerms, cfg.MaxQueryLength
	if maxTerms <= 0 {
		maxTerms = keywords.DefaultMaxTerms
	}
	if maxLength <= 0 {
		maxLength = keywords.DefaultMaxLength
	}

	return httpProvider{
		name:           name,
		keyField:       keyField,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         client,
		limiter:        limiter,
		maxQueryTerms:  maxTerms,
		maxQueryLength: maxLength,
	}
}

// prepare checks the key and normalizes the query before any request is made.
func (p *httpProvider) prepare(req SearchRequest) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", apperr.Configuration("%s API key missing; save %s in your settings", p.name, p.keyField)
	}
	query := keywords.NormalizeQuery(req.Query, p.maxQueryTerms, p.maxQueryLength)
	if query == "" {
		return "", apperr.Validation("search query is empty after normalization")
	}
	return query, nil
}

// getJSON performs a rate limited GET and decodes a 2xx JSON body into out.
func (p *httpProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return apperr.Provider(0, err, "%s request cancelled while rate limited", p.name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", p.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// url.Error embeds the full URL, which carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return apperr.Provider(0, err, "%s request failed", p.name)
	}
	defer resp.Body.Close() // Go Pattern: ALWAYS close response bodies!

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperr.Provider(resp.StatusCode, err, "failed to read %s response", p.name)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return p.statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Provider(resp.StatusCode, err, "%s returned malformed JSON", p.name)
	}
	return nil
}

func (p *httpProvider) statusError(status int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.Configuration("%s rejected the API key; check %s in your settings", p.name, p.keyField)
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(snippet), "api key"):
		return apperr.Configuration("%s rejected the API key; check %s in your settings", p.name, p.keyField)
	case status == http.StatusTooManyRequests:
		return apperr.Provider(status, nil, "%s rate limit exceeded", p.name)
	default:
		return apperr.Provider(status, nil, "%s returned %d: %s", p.name, status, snippet)
	}
}

// splitTags turns Pixabay's "a, b, c" tag string into a slice.
func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	return keywords.Split(tags)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
