package infra

import (
	"testing"
	"time"
)

// clearPipelineEnv blanks every variable LoadConfig reads so assertions see
// the documented defaults regardless of the ambient process environment.
// Empty values count as unset.
func clearPipelineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "ASSETS_DIR", "OUTPUT_DIR", "ASSET_EXTENSIONS",
		"ASPECT_RATIOS", "OUTPUT_FORMAT", "JPEG_QUALITY",
		"PROVIDER_PRIORITY", "HF_API_KEY", "HF_BASE_URL", "HF_MODELS",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL",
		"GENERATE_TIMEOUT", "GENERATE_MAX_ATTEMPTS", "GENERATE_BACKOFF",
		"SAVE_GENERATED_ASSETS", "PIPELINE_CONCURRENCY", "LEDGER_DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearPipelineEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AssetsDir != "input_assets" {
		t.Fatalf("assets dir = %q, want input_assets", cfg.AssetsDir)
	}
	if cfg.OutputDir != "output" {
		t.Fatalf("output dir = %q, want output", cfg.OutputDir)
	}
	if got, want := len(cfg.AssetExtensions), 4; got != want {
		t.Fatalf("extensions = %v, want %d entries", cfg.AssetExtensions, want)
	}
	if cfg.AssetExtensions[0] != "jpg" {
		t.Fatalf("first extension = %q, want jpg", cfg.AssetExtensions[0])
	}
	if cfg.OutputFormat != "jpg" {
		t.Fatalf("output format = %q, want jpg", cfg.OutputFormat)
	}
	if cfg.GenerateMaxAttempts != 3 {
		t.Fatalf("max attempts = %d, want 3", cfg.GenerateMaxAttempts)
	}
	if cfg.GenerateTimeout != 120*time.Second {
		t.Fatalf("timeout = %v, want 120s", cfg.GenerateTimeout)
	}
	if len(cfg.AspectRatios) != 3 {
		t.Fatalf("aspect ratios = %v, want 3 entries", cfg.AspectRatios)
	}
	square := cfg.AspectRatios[0]
	if square.Name != "1:1" || square.Width != 1024 || square.Height != 1024 {
		t.Fatalf("first ratio = %+v, want 1:1 1024x1024", square)
	}
}

func TestLoadConfigCustomRatios(t *testing.T) {
	clearPipelineEnv(t)
	t.Setenv("ASPECT_RATIOS", "banner=1200x300, story=1080x1920")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.AspectRatios) != 2 {
		t.Fatalf("aspect ratios = %v, want 2 entries", cfg.AspectRatios)
	}
	if r := cfg.AspectRatios[1]; r.Name != "story" || r.Width != 1080 || r.Height != 1920 {
		t.Fatalf("second ratio = %+v, want story 1080x1920", r)
	}
}

func TestLoadConfigRejectsBadRatios(t *testing.T) {
	clearPipelineEnv(t)
	for _, raw := range []string{"1:1", "1:1=1024", "1:1=0x100", "1:1=ax100"} {
		t.Setenv("ASPECT_RATIOS", raw)
		if _, err := LoadConfig(); err == nil {
			t.Fatalf("expected error for ASPECT_RATIOS=%q", raw)
		}
	}
}

func TestLoadConfigRejectsBadFormat(t *testing.T) {
	clearPipelineEnv(t)
	t.Setenv("OUTPUT_FORMAT", "gif")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for OUTPUT_FORMAT=gif")
	}
}

func TestLoadConfigProviderPriority(t *testing.T) {
	clearPipelineEnv(t)
	t.Setenv("PROVIDER_PRIORITY", "synthetic")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.ProviderPriority) != 1 || cfg.ProviderPriority[0] != "synthetic" {
		t.Fatalf("provider priority = %v, want [synthetic]", cfg.ProviderPriority)
	}
}
