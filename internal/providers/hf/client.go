// Package hf provides a thin client for the Hugging Face inference API's
// text-to-image endpoint.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pipeline/internal/domain"
	"pipeline/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("hf: api key is required")

// Options configures the Hugging Face inference client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client performs HTTP calls against the hosted inference API. One call is
// one attempt against one model; model fallback and retry policy live above.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest captures the required inputs for a single inference call.
type ImageRequest struct {
	Model        string
	Prompt       string
	Seed         int
	WaitForModel bool
}

// ImageAsset is the raw image returned by the inference endpoint.
type ImageAsset struct {
	Data   []byte
	Format string
}

type inferencePayload struct {
	Inputs     string           `json:"inputs"`
	Parameters *inferenceParams `json:"parameters,omitempty"`
	Options    map[string]any   `json:"options,omitempty"`
}

type inferenceParams struct {
	Seed *int `json:"seed,omitempty"`
}

type errorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// GenerateImage invokes the inference endpoint once and returns the image
// bytes. Rate limits, model-loading waits, and server errors come back marked
// transient; malformed responses and client errors are terminal.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return nil, errors.New("hf: model is required")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("hf: prompt is required")
	}

	payload := inferencePayload{Inputs: prompt}
	if req.WaitForModel {
		payload.Options = map[string]any{"wait_for_model": true}
	}
	if req.Seed > 0 {
		seed := req.Seed
		payload.Parameters = &inferenceParams{Seed: &seed}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hf: encode request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hf: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("hf: http request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("hf: read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(model, resp.StatusCode, raw)
	}

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		// A 200 that isn't an image is a malformed response, not worth retrying.
		return nil, fmt.Errorf("hf: %s: unexpected content type %q", model, contentType)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("hf: %s: empty image response", model)
	}

	c.logger.Debug().
		Str("model", model).
		Int("bytes", len(raw)).
		Msg("hf: generated image")
	return &ImageAsset{Data: raw, Format: contentType}, nil
}

func (c *Client) statusError(model string, status int, raw []byte) error {
	detail := strings.TrimSpace(string(raw))
	var decoded errorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != "" {
		detail = decoded.Error
	}
	err := fmt.Errorf("hf: %s: status %d: %s", model, status, detail)
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return domain.Transient(err)
	}
	return err
}
