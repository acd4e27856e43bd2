package image

import (
	"bytes"
	"context"
	stdimage "image"
	_ "image/png"
	"testing"
)

func TestSyntheticGeneratorIsDeterministic(t *testing.T) {
	g := NewSyntheticGenerator()
	req := GenerateRequest{ProductID: "P1", Prompt: "product photo", Width: 64, Height: 48, Seed: 7}

	first, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatal("same request produced different images")
	}

	cfg, format, err := stdimage.DecodeConfig(bytes.NewReader(first.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" {
		t.Fatalf("format = %q, want png", format)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Fatalf("dimensions = %dx%d, want requested 64x48", cfg.Width, cfg.Height)
	}
}

func TestSyntheticGeneratorVariesByProduct(t *testing.T) {
	g := NewSyntheticGenerator()
	a, err := g.Generate(context.Background(), GenerateRequest{ProductID: "P1", Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := g.Generate(context.Background(), GenerateRequest{ProductID: "P2", Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bytes.Equal(a.Data, b.Data) {
		t.Fatal("different products produced identical images")
	}
}

func TestSyntheticGeneratorDefaultsSize(t *testing.T) {
	g := NewSyntheticGenerator()
	asset, err := g.Generate(context.Background(), GenerateRequest{ProductID: "P1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if asset.Width != 1024 || asset.Height != 1024 {
		t.Fatalf("dimensions = %dx%d, want 1024x1024 default", asset.Width, asset.Height)
	}
}
