// Package pipeline drives the creative run: per product, resolve or generate
// a source asset, then compose and persist one creative per aspect ratio,
// aggregating per-item outcomes without ever aborting the whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pipeline/internal/assets"
	"pipeline/internal/compose"
	"pipeline/internal/domain"
	"pipeline/internal/infra"
	imageprovider "pipeline/internal/providers/image"
	"pipeline/internal/storage"
)

// Recorder persists a finished run report, e.g. into the Postgres ledger.
type Recorder interface {
	RecordRun(ctx context.Context, report Report) error
}

// Options wires a Runner's collaborators.
type Options struct {
	Logger    *infra.Logger
	Resolver  *assets.Resolver
	Generator imageprovider.Generator
	Composer  *compose.Composer
	Store     *storage.FileStore
	Ratios    []domain.AspectRatio

	// Recorder is optional; nil disables run history.
	Recorder Recorder
	// Concurrency > 1 processes that many products in parallel. Items stay
	// independent: products never share mutable state and never write the
	// same output path.
	Concurrency int
	// SaveGeneratedAssets writes generated sources back into the assets
	// directory so later runs reuse them.
	SaveGeneratedAssets bool
}

// Runner executes campaign briefs.
type Runner struct {
	logger        infra.Logger
	resolver      *assets.Resolver
	generator     imageprovider.Generator
	composer      *compose.Composer
	store         *storage.FileStore
	ratios        []domain.AspectRatio
	recorder      Recorder
	concurrency   int
	saveGenerated bool
}

// NewRunner validates the wiring and constructs a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Logger == nil {
		return nil, errors.New("pipeline: logger is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("pipeline: resolver is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	if opts.Composer == nil {
		return nil, errors.New("pipeline: composer is required")
	}
	if opts.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if len(opts.Ratios) == 0 {
		return nil, errors.New("pipeline: at least one aspect ratio is required")
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		logger:        *opts.Logger,
		resolver:      opts.Resolver,
		generator:     opts.Generator,
		composer:      opts.Composer,
		store:         opts.Store,
		ratios:        opts.Ratios,
		recorder:      opts.Recorder,
		concurrency:   concurrency,
		saveGenerated: opts.SaveGeneratedAssets,
	}, nil
}

// Run processes every product x aspect-ratio combination of the brief and
// returns the aggregated report. Cancellation stops the traversal between
// items; already persisted creatives stay intact.
func (r *Runner) Run(ctx context.Context, brief domain.CampaignBrief) Report {
	report := Report{
		RunID:     uuid.NewString(),
		Campaign:  brief.CampaignName,
		StartedAt: time.Now().UTC(),
	}
	r.logger.Info().
		Str("run_id", report.RunID).
		Str("campaign", brief.CampaignName).
		Int("products", len(brief.Products)).
		Int("ratios", len(r.ratios)).
		Msg("pipeline: run started")

	perProduct := make([][]ItemResult, len(brief.Products))
	if r.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for i, product := range brief.Products {
			i, product := i, product
			g.Go(func() error {
				perProduct[i] = r.processProduct(gctx, brief, product)
				return nil
			})
		}
		// Workers only ever return nil; failures are item-scoped results.
		_ = g.Wait()
	} else {
		for i, product := range brief.Products {
			perProduct[i] = r.processProduct(ctx, brief, product)
		}
	}
	for _, items := range perProduct {
		report.Items = append(report.Items, items...)
	}

	report.FinishedAt = time.Now().UTC()
	r.logger.Info().
		Str("run_id", report.RunID).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("pipeline: run finished")

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, report); err != nil {
			r.logger.Warn().Err(err).Str("run_id", report.RunID).Msg("pipeline: record run failed")
		}
	}
	return report
}

// processProduct resolves or generates the product's source asset, then
// renders one creative per aspect ratio. A missing source fails all of the
// product's items without attempting composition.
func (r *Runner) processProduct(ctx context.Context, brief domain.CampaignBrief, product domain.Product) []ItemResult {
	src, err := r.sourceFor(ctx, brief, product)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("pipeline: no usable source asset")
		return r.failAll(product, src.Provenance, err)
	}
	r.logger.Info().
		Str("product_id", product.ID).
		Str("provenance", string(src.Provenance)).
		Msg("pipeline: source asset ready")

	text := brief.MessageFor(product)
	items := make([]ItemResult, 0, len(r.ratios))
	for _, ratio := range r.ratios {
		if cerr := ctx.Err(); cerr != nil {
			items = append(items, ItemResult{
				ProductID:  product.ID,
				Ratio:      ratio.Name,
				Status:     StatusFailed,
				Provenance: src.Provenance,
				Err:        cerr,
			})
			continue
		}
		items = append(items, r.renderItem(ctx, src, ratio, text))
	}
	return items
}

func (r *Runner) renderItem(ctx context.Context, src domain.SourceAsset, ratio domain.AspectRatio, text string) ItemResult {
	item := ItemResult{
		ProductID:  src.ProductID,
		Ratio:      ratio.Name,
		Provenance: src.Provenance,
	}

	creative, err := r.composer.Compose(src, ratio, text)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", src.ProductID).
			Str("ratio", ratio.Name).
			Msg("pipeline: composition failed")
		item.Status = StatusFailed
		item.Err = err
		return item
	}

	path, err := r.store.Persist(ctx, creative)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", src.ProductID).
			Str("ratio", ratio.Name).
			Msg("pipeline: persist failed")
		item.Status = StatusFailed
		item.Err = err
		return item
	}

	r.logger.Info().
		Str("product_id", src.ProductID).
		Str("ratio", ratio.Name).
		Str("path", path).
		Msg("pipeline: creative written")
	item.Status = StatusSucceeded
	item.OutputPath = path
	return item
}

// sourceFor applies the reuse-first policy: the generator is consulted only
// after the resolver reports a definitive miss.
func (r *Runner) sourceFor(ctx context.Context, brief domain.CampaignBrief, product domain.Product) (domain.SourceAsset, error) {
	src, err := r.resolver.Resolve(product.ID)
	if err == nil {
		return src, nil
	}
	if !errors.Is(err, domain.ErrAssetNotFound) {
		return domain.SourceAsset{Provenance: domain.ProvenanceReused}, err
	}

	prompt := imageprovider.BuildProductPrompt(product, brief.CampaignMessage)
	width, height := r.sizeHint()
	asset, err := r.generator.Generate(ctx, imageprovider.GenerateRequest{
		ProductID: product.ID,
		Prompt:    prompt,
		Width:     width,
		Height:    height,
		Seed:      imageprovider.DeterministicSeed(product.ID, prompt),
		RequestID: product.ID,
	})
	if err != nil {
		return domain.SourceAsset{Provenance: domain.ProvenanceGenerated}, err
	}

	src = domain.SourceAsset{
		ProductID:  product.ID,
		Data:       asset.Data,
		MIME:       asset.MIME,
		Provenance: domain.ProvenanceGenerated,
	}
	if r.saveGenerated {
		if path, serr := r.resolver.SaveGenerated(src); serr != nil {
			r.logger.Warn().Err(serr).Str("product_id", product.ID).Msg("pipeline: save generated asset failed")
		} else {
			src.Path = path
		}
	}
	return src, nil
}

// sizeHint asks providers for the largest declared target so every crop
// downscales rather than upscales.
func (r *Runner) sizeHint() (int, int) {
	width, height := 0, 0
	for _, ratio := range r.ratios {
		if ratio.Width > width {
			width = ratio.Width
		}
		if ratio.Height > height {
			height = ratio.Height
		}
	}
	return width, height
}

func (r *Runner) failAll(product domain.Product, provenance domain.Provenance, cause error) []ItemResult {
	items := make([]ItemResult, 0, len(r.ratios))
	for _, ratio := range r.ratios {
		items = append(items, ItemResult{
			ProductID:  product.ID,
			Ratio:      ratio.Name,
			Status:     StatusFailed,
			Provenance: provenance,
			Err:        fmt.Errorf("source asset unavailable: %w", cause),
		})
	}
	return items
}
