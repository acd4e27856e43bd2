package image

import (
	"strings"
	"testing"

	"pipeline/internal/domain"
)

func TestBuildProductPrompt(t *testing.T) {
	p := domain.Product{
		ID:          "P1",
		Name:        "trail sneakers",
		Description: "lightweight running shoes",
	}
	prompt := BuildProductPrompt(p, "Summer Sale")

	if !strings.HasPrefix(prompt, "professional product photo of Trail Sneakers") {
		t.Fatalf("prompt = %q, want title-cased product name first", prompt)
	}
	if !strings.Contains(prompt, "lightweight running shoes") {
		t.Fatalf("prompt = %q, want description included", prompt)
	}
	if !strings.Contains(prompt, "clean white background") {
		t.Fatalf("prompt = %q, want studio framing", prompt)
	}
	if !strings.Contains(prompt, "Campaign context: Summer Sale") {
		t.Fatalf("prompt = %q, want campaign message", prompt)
	}
}

func TestBuildProductPromptFallsBackToID(t *testing.T) {
	prompt := BuildProductPrompt(domain.Product{ID: "P9"}, "")
	if !strings.Contains(prompt, "P9") {
		t.Fatalf("prompt = %q, want product id when name is blank", prompt)
	}
	if strings.Contains(prompt, "Campaign context") {
		t.Fatalf("prompt = %q, want no campaign line for empty message", prompt)
	}
}

func TestDeterministicSeedIsStable(t *testing.T) {
	a := DeterministicSeed("P1", "prompt")
	b := DeterministicSeed("P1", "prompt")
	if a != b {
		t.Fatalf("seed not stable: %d vs %d", a, b)
	}
	if a <= 0 {
		t.Fatalf("seed = %d, want positive", a)
	}
	if c := DeterministicSeed("P2", "prompt"); c == a {
		t.Fatalf("seed = %d for both products, want distinct inputs to differ", c)
	}
}
