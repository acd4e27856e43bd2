package image

import (
	"context"
	"errors"

	"pipeline/internal/providers/genai"
)

type geminiImageClient interface {
	GenerateImage(context.Context, genai.ImageRequest) (*genai.ImageAsset, error)
	HasCredentials() bool
	Model() string
}

// GeminiGenerator adapts the Gemini generateContent client to the Generator
// contract.
type GeminiGenerator struct {
	client geminiImageClient
}

// NewGeminiGenerator wraps a configured Gemini client.
func NewGeminiGenerator(client geminiImageClient) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Name() string { return "gemini" }

// Generate fulfils the Generator interface.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	if g == nil || g.client == nil {
		return Asset{}, errors.New("gemini generator not configured")
	}
	if !g.client.HasCredentials() {
		return Asset{}, genai.ErrMissingAPIKey
	}
	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt:    req.Prompt,
		Width:     req.Width,
		Height:    req.Height,
		RequestID: req.RequestID,
	})
	if err != nil {
		return Asset{}, err
	}
	return Asset{
		Data:   asset.Data,
		MIME:   normalizeMIME(asset.Format),
		Width:  asset.Width,
		Height: asset.Height,
		Model:  g.client.Model(),
	}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
