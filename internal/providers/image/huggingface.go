package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pipeline/internal/infra"
	"pipeline/internal/providers/hf"
)

type hfImageClient interface {
	GenerateImage(context.Context, hf.ImageRequest) (*hf.ImageAsset, error)
	HasCredentials() bool
}

// HuggingFaceGenerator walks an ordered model list and returns the first
// model that produces an image. A model failure falls through to the next
// model; only when every model has failed does the call count as a failed
// attempt.
type HuggingFaceGenerator struct {
	client hfImageClient
	models []string
	logger *infra.Logger
}

// NewHuggingFaceGenerator wires an inference client with its model priority list.
func NewHuggingFaceGenerator(client hfImageClient, models []string, logger *infra.Logger) *HuggingFaceGenerator {
	return &HuggingFaceGenerator{client: client, models: models, logger: logger}
}

func (g *HuggingFaceGenerator) Name() string { return "huggingface" }

// Generate fulfils the Generator interface.
func (g *HuggingFaceGenerator) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	if g == nil || g.client == nil {
		return Asset{}, errors.New("huggingface generator not configured")
	}
	if !g.client.HasCredentials() {
		return Asset{}, hf.ErrMissingAPIKey
	}
	if len(g.models) == 0 {
		return Asset{}, errors.New("huggingface generator has no models configured")
	}

	var lastErr error
	for _, model := range g.models {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Asset{}, err
		}
		asset, err := g.client.GenerateImage(ctx, hf.ImageRequest{
			Model:        model,
			Prompt:       req.Prompt,
			Seed:         req.Seed,
			WaitForModel: true,
		})
		if err != nil {
			lastErr = err
			if g.logger != nil {
				g.logger.Warn().Err(err).
					Str("model", model).
					Str("product_id", req.ProductID).
					Msg("huggingface: model failed, trying next")
			}
			continue
		}
		return Asset{
			Data:  asset.Data,
			MIME:  normalizeMIME(asset.Format),
			Model: model,
		}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no usable model")
	}
	// %w keeps lastErr's transient marker visible to the retry layer.
	return Asset{}, fmt.Errorf("huggingface: all models failed: %w", lastErr)
}

var _ Generator = (*HuggingFaceGenerator)(nil)
