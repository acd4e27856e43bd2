package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"pipeline/internal/domain"
)

func newTestComposer(t *testing.T, format string) *Composer {
	t.Helper()
	c, err := NewComposer(Options{Format: format, JPEGQuality: 90})
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	return c
}

// sourcePNG renders a solid-color source of the given size.
func sourcePNG(t *testing.T, width, height int) domain.SourceAsset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return domain.SourceAsset{
		ProductID:  "P1",
		Data:       buf.Bytes(),
		MIME:       "image/png",
		Provenance: domain.ProvenanceReused,
	}
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode creative: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestComposeExactTargetDimensions(t *testing.T) {
	ratios := []domain.AspectRatio{
		{Name: "1:1", Width: 300, Height: 300},
		{Name: "9:16", Width: 300, Height: 533},
		{Name: "16:9", Width: 533, Height: 300},
	}
	sources := map[string]domain.SourceAsset{
		"landscape source": sourcePNG(t, 640, 400),
		"portrait source":  sourcePNG(t, 400, 640),
	}
	c := newTestComposer(t, "jpg")

	for srcName, src := range sources {
		for _, ratio := range ratios {
			creative, err := c.Compose(src, ratio, "Summer Sale")
			if err != nil {
				t.Fatalf("%s at %s: %v", srcName, ratio.Name, err)
			}
			w, h := decodeDims(t, creative.Data)
			if w != ratio.Width || h != ratio.Height {
				t.Fatalf("%s at %s: got %dx%d, want %dx%d", srcName, ratio.Name, w, h, ratio.Width, ratio.Height)
			}
			if creative.Ratio.Name != ratio.Name {
				t.Fatalf("ratio name = %q, want %q", creative.Ratio.Name, ratio.Name)
			}
			if creative.Format != "jpg" {
				t.Fatalf("format = %q, want jpg", creative.Format)
			}
		}
	}
}

func TestComposeAppliesOverlayText(t *testing.T) {
	c := newTestComposer(t, "jpg")
	creative, err := c.Compose(sourcePNG(t, 600, 600), domain.AspectRatio{Name: "1:1", Width: 400, Height: 400}, "  Summer Sale  ")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if creative.OverlayText != "Summer Sale" {
		t.Fatalf("overlay text = %q, want trimmed message", creative.OverlayText)
	}
}

func TestComposeTruncatesLongText(t *testing.T) {
	c := newTestComposer(t, "jpg")
	long := strings.Repeat("limited time offer ", 40)
	creative, err := c.Compose(sourcePNG(t, 600, 600), domain.AspectRatio{Name: "1:1", Width: 200, Height: 200}, long)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.HasSuffix(creative.OverlayText, "…") {
		t.Fatalf("overlay text = %q, want ellipsis suffix", creative.OverlayText)
	}
	if len(creative.OverlayText) >= len(long) {
		t.Fatal("overlay text was not shortened")
	}
}

func TestFitFaceNeverShrinksBelowFloor(t *testing.T) {
	c := newTestComposer(t, "jpg")
	long := strings.Repeat("limited time offer ", 20)

	// Odd starting sizes step through the floor without a clamp (15 -> 13).
	for _, start := range []int{15, 16, 21, 64} {
		_, size, err := c.fitFace(long, 120, start)
		if err != nil {
			t.Fatalf("fit face from %d: %v", start, err)
		}
		if size < minFontSize {
			t.Fatalf("size = %d from start %d, want at least %d", size, start, minFontSize)
		}
	}
}

func TestComposePNGOutput(t *testing.T) {
	c := newTestComposer(t, "png")
	creative, err := c.Compose(sourcePNG(t, 300, 300), domain.AspectRatio{Name: "1:1", Width: 100, Height: 100}, "")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(creative.Data))
	if err != nil {
		t.Fatalf("decode creative: %v", err)
	}
	if format != "png" {
		t.Fatalf("encoded format = %q, want png", format)
	}
}

func TestComposeRejectsCorruptSource(t *testing.T) {
	c := newTestComposer(t, "jpg")
	src := domain.SourceAsset{ProductID: "P1", Data: []byte("not an image")}
	_, err := c.Compose(src, domain.AspectRatio{Name: "1:1", Width: 100, Height: 100}, "text")
	if !errors.Is(err, domain.ErrCompositionFailed) {
		t.Fatalf("err = %v, want ErrCompositionFailed", err)
	}
}

func TestComposeRejectsInvalidRatio(t *testing.T) {
	c := newTestComposer(t, "jpg")
	_, err := c.Compose(sourcePNG(t, 100, 100), domain.AspectRatio{Name: "bad", Width: 0, Height: 100}, "")
	if !errors.Is(err, domain.ErrCompositionFailed) {
		t.Fatalf("err = %v, want ErrCompositionFailed", err)
	}
}

func TestNewComposerRejectsUnknownFormat(t *testing.T) {
	if _, err := NewComposer(Options{Format: "gif"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
