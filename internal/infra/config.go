package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pipeline/internal/domain"
)

// Config represents pipeline configuration loaded from environment variables.
type Config struct {
	AppEnv string

	AssetsDir       string
	OutputDir       string
	AssetExtensions []string
	AspectRatios    []domain.AspectRatio
	OutputFormat    string
	JPEGQuality     int

	ProviderPriority []string
	HFAPIKey         string
	HFBaseURL        string
	HFModels         []string
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiModel      string

	GenerateTimeout     time.Duration
	GenerateMaxAttempts int
	GenerateBackoff     time.Duration

	SaveGeneratedAssets bool
	Concurrency         int
	LedgerDatabaseURL   string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		AssetsDir:           getEnv("ASSETS_DIR", "input_assets"),
		OutputDir:           getEnv("OUTPUT_DIR", "output"),
		AssetExtensions:     getEnvList("ASSET_EXTENSIONS", "jpg,jpeg,png,webp"),
		OutputFormat:        strings.ToLower(getEnv("OUTPUT_FORMAT", "jpg")),
		JPEGQuality:         getEnvInt("JPEG_QUALITY", 95),
		ProviderPriority:    getEnvList("PROVIDER_PRIORITY", "huggingface,gemini"),
		HFAPIKey:            os.Getenv("HF_API_KEY"),
		HFBaseURL:           getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFModels:            getEnvList("HF_MODELS", "black-forest-labs/FLUX.1-schnell,dataautogpt3/OpenDalleV1.1"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GenerateTimeout:     getEnvDuration("GENERATE_TIMEOUT", 120*time.Second),
		GenerateMaxAttempts: getEnvInt("GENERATE_MAX_ATTEMPTS", 3),
		GenerateBackoff:     getEnvDuration("GENERATE_BACKOFF", 2*time.Second),
		SaveGeneratedAssets: getEnvBool("SAVE_GENERATED_ASSETS", true),
		Concurrency:         getEnvInt("PIPELINE_CONCURRENCY", 1),
		LedgerDatabaseURL:   os.Getenv("LEDGER_DATABASE_URL"),
	}

	ratios, err := parseAspectRatios(getEnv("ASPECT_RATIOS", "1:1=1024x1024,9:16=720x1280,16:9=1280x720"))
	if err != nil {
		return nil, err
	}
	cfg.AspectRatios = ratios

	if cfg.OutputFormat != "jpg" && cfg.OutputFormat != "png" {
		return nil, fmt.Errorf("OUTPUT_FORMAT must be jpg or png, got %q", cfg.OutputFormat)
	}
	if len(cfg.AssetExtensions) == 0 {
		return nil, fmt.Errorf("ASSET_EXTENSIONS must list at least one extension")
	}
	if cfg.GenerateMaxAttempts < 1 {
		return nil, fmt.Errorf("GENERATE_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return cfg, nil
}

// parseAspectRatios parses a "name=WIDTHxHEIGHT" comma-separated list.
func parseAspectRatios(raw string) ([]domain.AspectRatio, error) {
	var ratios []domain.AspectRatio
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, dims, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("ASPECT_RATIOS entry %q: want name=WIDTHxHEIGHT", entry)
		}
		ws, hs, ok := strings.Cut(dims, "x")
		if !ok {
			return nil, fmt.Errorf("ASPECT_RATIOS entry %q: want name=WIDTHxHEIGHT", entry)
		}
		width, err := strconv.Atoi(strings.TrimSpace(ws))
		if err != nil {
			return nil, fmt.Errorf("ASPECT_RATIOS entry %q: bad width: %w", entry, err)
		}
		height, err := strconv.Atoi(strings.TrimSpace(hs))
		if err != nil {
			return nil, fmt.Errorf("ASPECT_RATIOS entry %q: bad height: %w", entry, err)
		}
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("ASPECT_RATIOS entry %q: dimensions must be positive", entry)
		}
		ratios = append(ratios, domain.AspectRatio{
			Name:   strings.TrimSpace(name),
			Width:  width,
			Height: height,
		})
	}
	if len(ratios) == 0 {
		return nil, fmt.Errorf("ASPECT_RATIOS must declare at least one ratio")
	}
	return ratios, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
