package image

import (
	"context"
	"errors"
	"fmt"

	"pipeline/internal/infra"
)

// Chain tries providers in priority order and returns the first success. A
// provider failure falls through to the next provider; the last error is
// returned when every provider fails, keeping its transient marker intact so
// the retry layer can decide whether another pass is worthwhile.
type Chain struct {
	generators []Generator
	logger     *infra.Logger
}

// NewChain builds a priority chain over the given generators.
func NewChain(logger *infra.Logger, generators ...Generator) *Chain {
	return &Chain{generators: generators, logger: logger}
}

func (c *Chain) Name() string { return "chain" }

// Generate fulfils the Generator interface.
func (c *Chain) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	if len(c.generators) == 0 {
		return Asset{}, errors.New("image: no generation provider configured")
	}
	var lastErr error
	for _, g := range c.generators {
		if err := ctx.Err(); err != nil {
			return Asset{}, err
		}
		asset, err := g.Generate(ctx, req)
		if err == nil {
			asset.MIME = normalizeMIME(asset.MIME)
			return asset, nil
		}
		lastErr = err
		if c.logger != nil {
			c.logger.Warn().Err(err).
				Str("provider", g.Name()).
				Str("product_id", req.ProductID).
				Msg("image: provider failed, trying next")
		}
	}
	return Asset{}, fmt.Errorf("image: all providers failed: %w", lastErr)
}

var _ Generator = (*Chain)(nil)
