package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pipeline/internal/assets"
	"pipeline/internal/brief"
	"pipeline/internal/compose"
	"pipeline/internal/infra"
	"pipeline/internal/ledger"
	"pipeline/internal/pipeline"
	"pipeline/internal/providers/genai"
	"pipeline/internal/providers/hf"
	imageprovider "pipeline/internal/providers/image"
	"pipeline/internal/storage"
)

const defaultBriefPath = "campaign_brief.json"

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	briefPath := defaultBriefPath
	if len(os.Args) > 1 {
		briefPath = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	campaign, err := brief.Load(briefPath)
	if err != nil {
		logger.Error().Err(err).Str("path", briefPath).Msg("pipeline: brief ingestion failed")
		os.Exit(2)
	}

	resolver, err := assets.NewResolver(assets.Options{
		Dir:        cfg.AssetsDir,
		Extensions: cfg.AssetExtensions,
		Logger:     &logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: resolver setup failed")
		os.Exit(2)
	}

	composer, err := compose.NewComposer(compose.Options{
		Format:      cfg.OutputFormat,
		JPEGQuality: cfg.JPEGQuality,
	})
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: composer setup failed")
		os.Exit(2)
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: output store setup failed")
		os.Exit(2)
	}

	var recorder pipeline.Recorder
	if cfg.LedgerDatabaseURL != "" {
		ledgerStore, err := ledger.Open(ctx, cfg.LedgerDatabaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("pipeline: ledger setup failed")
			os.Exit(2)
		}
		defer ledgerStore.Close()
		recorder = ledgerStore
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		Logger:              &logger,
		Resolver:            resolver,
		Generator:           buildGenerator(cfg, &logger),
		Composer:            composer,
		Store:               store,
		Ratios:              cfg.AspectRatios,
		Recorder:            recorder,
		Concurrency:         cfg.Concurrency,
		SaveGeneratedAssets: cfg.SaveGeneratedAssets,
	})
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: runner setup failed")
		os.Exit(2)
	}

	report := runner.Run(ctx, campaign)
	printSummary(report, cfg.OutputDir)
	if report.HasFailures() {
		os.Exit(1)
	}
}

// buildGenerator assembles the provider chain in configured priority order
// and wraps it with the retry policy. Providers missing credentials are
// skipped at wiring time with a log line.
func buildGenerator(cfg *infra.Config, logger *infra.Logger) imageprovider.Generator {
	httpClient := &http.Client{}

	var generators []imageprovider.Generator
	for _, name := range cfg.ProviderPriority {
		switch name {
		case "huggingface":
			if cfg.HFAPIKey == "" {
				logger.Warn().Msg("pipeline: HF_API_KEY missing, skipping huggingface provider")
				continue
			}
			client, err := hf.NewClient(hf.Options{
				APIKey:     cfg.HFAPIKey,
				BaseURL:    cfg.HFBaseURL,
				HTTPClient: httpClient,
				Logger:     logger,
			})
			if err != nil {
				logger.Warn().Err(err).Msg("pipeline: huggingface provider setup failed")
				continue
			}
			generators = append(generators, imageprovider.NewHuggingFaceGenerator(client, cfg.HFModels, logger))
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				logger.Warn().Msg("pipeline: GEMINI_API_KEY missing, skipping gemini provider")
				continue
			}
			client, err := genai.NewClient(genai.Options{
				APIKey:     cfg.GeminiAPIKey,
				BaseURL:    cfg.GeminiBaseURL,
				Model:      cfg.GeminiModel,
				HTTPClient: httpClient,
				Logger:     logger,
			})
			if err != nil {
				logger.Warn().Err(err).Msg("pipeline: gemini provider setup failed")
				continue
			}
			generators = append(generators, imageprovider.NewGeminiGenerator(client))
		case "synthetic":
			generators = append(generators, imageprovider.NewSyntheticGenerator())
		default:
			logger.Warn().Str("provider", name).Msg("pipeline: unknown provider in priority list")
		}
	}

	chain := imageprovider.NewChain(logger, generators...)
	return imageprovider.NewRetrying(chain, imageprovider.RetryOptions{
		Timeout:     cfg.GenerateTimeout,
		MaxAttempts: cfg.GenerateMaxAttempts,
		Backoff:     cfg.GenerateBackoff,
		Logger:      logger,
	})
}

func printSummary(report pipeline.Report, outputDir string) {
	fmt.Println()
	fmt.Println("Creative pipeline finished")
	fmt.Printf("Campaign:  %s\n", report.Campaign)
	fmt.Printf("Run ID:    %s\n", report.RunID)
	fmt.Printf("Succeeded: %d (reused %d, generated %d)\n",
		report.Succeeded(), report.ReusedSuccesses(), report.GeneratedSuccesses())
	fmt.Printf("Failed:    %d\n", report.Failed())
	for _, item := range report.Items {
		if item.Status == pipeline.StatusSucceeded {
			fmt.Printf("  ok   %s %s (%s) -> %s\n", item.ProductID, item.Ratio, item.Provenance, item.OutputPath)
		} else {
			fmt.Printf("  FAIL %s %s: %s\n", item.ProductID, item.Ratio, item.Cause())
		}
	}
	fmt.Printf("Output directory: %s\n", outputDir)
}
