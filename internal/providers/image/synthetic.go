package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	stdimage "image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// SyntheticGenerator renders deterministic placeholder images locally, with
// no network access or credentials. It is selected explicitly through the
// provider priority for keyless development runs and end-to-end tests; the
// pipeline never substitutes it for a failed remote provider.
type SyntheticGenerator struct{}

// NewSyntheticGenerator constructs the local placeholder provider.
func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{}
}

func (g *SyntheticGenerator) Name() string { return "synthetic" }

// Generate fulfils the Generator interface. The same request always renders
// the same image.
func (g *SyntheticGenerator) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	width, height := req.Width, req.Height
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	seed := syntheticSeed(req.ProductID, req.Prompt, req.Seed)
	data, err := renderSyntheticImage(width, height, seed)
	if err != nil {
		return Asset{}, err
	}
	return Asset{
		Data:   data,
		MIME:   "image/png",
		Width:  width,
		Height: height,
		Model:  "synthetic",
	}, nil
}

var _ Generator = (*SyntheticGenerator)(nil)

func syntheticSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(hasher, "%v|", part)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

// renderSyntheticImage draws a seeded flat background with stripe and
// diagonal accents, enough visual structure to eyeball crops and overlays.
func renderSyntheticImage(width, height int, seed string) ([]byte, error) {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &stdimage.Uniform{C: base}, stdimage.Point{}, draw.Src)

	stripeHeight := max(32, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := stdimage.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &stdimage.Uniform{C: accent}, stdimage.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	step := max(16, width/32)
	for x := 0; x < max(width, height); x += step {
		for y := 0; y < height; y++ {
			xx := x + y
			if xx >= width {
				break
			}
			img.Set(xx, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("synthetic: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if seed == "" {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: parseHexByte(segment[0:2]),
		G: parseHexByte(segment[2:4]),
		B: parseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}
