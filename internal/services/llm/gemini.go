// Package llm talks to the Gemini API for structured (JSON schema) output.
//
// Credentials belong to the user, not the server: every call carries the
// caller's API key, and a fresh genai client is built for it. The client is
// cheap to construct and holds no connection of its own; the shared
// http.Client underneath does the pooling.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
)

// Request is one structured-output generation call.
type Request struct {
	APIKey      string
	Model       string // empty = client default
	Prompt      string
	Schema      *genai.Schema
	Temperature float32 // 0 = provider default
}

// Model produces a JSON document for a prompt.
// Go Pattern: Callers depend on this interface, so tests can swap in a fake
// that counts invocations without any network.
type Model interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
}

// Gemini is the genai-backed Model.
type Gemini struct {
	defaultModel string
	baseURL      string
	httpClient   *http.Client
}

// NewGemini creates a Gemini model client. baseURL may be empty to use the
// public endpoint.
func NewGemini(defaultModel, baseURL string) *Gemini {
	return &Gemini{
		defaultModel: defaultModel,
		baseURL:      strings.TrimRight(baseURL, "/"),
		// Go Pattern: Always configure timeouts on HTTP clients.
		httpClient: &http.Client{
			Timeout:   120 * time.Second, // LLMs can be slow
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// GenerateJSON sends one request and returns the raw JSON text of the answer.
func (g *Gemini) GenerateJSON(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", apperr.Configuration("Gemini API key not configured; save geminiApiKey in your settings")
	}

	model := req.Model
	if model == "" {
		model = g.defaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     req.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL + "/"}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", apperr.Configuration("failed to initialise Gemini client: %v", err)
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(req.Temperature)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", classifyError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", apperr.Generation(nil, "Gemini blocked the prompt (%s)", resp.PromptFeedback.BlockReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperr.Generation(nil, "Gemini returned no output")
	}
	return text, nil
}

// classifyError separates rejected credentials from other upstream failures.
func classifyError(err error) error {
	code, message, ok := apiErrorDetails(err)
	if !ok {
		return apperr.Provider(0, err, "Gemini request failed")
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperr.Configuration("Gemini rejected the API key; check geminiApiKey in your settings (%s)", message)
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "api key"):
		return apperr.Configuration("Gemini rejected the API key; check geminiApiKey in your settings (%s)", message)
	case code == http.StatusTooManyRequests:
		return apperr.Provider(code, err, "Gemini quota exceeded")
	default:
		return apperr.Provider(code, err, "Gemini returned %d", code)
	}
}

func apiErrorDetails(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}

// String describes the client for startup logs.
func (g *Gemini) String() string {
	if g.baseURL == "" {
		return fmt.Sprintf("gemini(%s)", g.defaultModel)
	}
	return fmt.Sprintf("gemini(%s @ %s)", g.defaultModel, g.baseURL)
}
