// Package compose renders a creative from a source asset: proportional
// scale-to-cover with a center crop to the exact target dimensions, plus a
// bottom-banner text overlay.
package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // register webp decoding for reused assets

	"pipeline/internal/domain"
)

const (
	// minFontSize is the floor below which the overlay text is truncated
	// with an ellipsis instead of shrinking further.
	minFontSize = 14
	maxFontSize = 64
	ellipsis    = "…"
)

// Options configures a Composer.
type Options struct {
	// Format is the output encoding, "jpg" or "png".
	Format string
	// JPEGQuality applies to jpg output only.
	JPEGQuality int
}

// Composer produces creatives for (source, ratio, text) triples. It is
// stateless apart from the parsed font and safe for concurrent use; it never
// mutates the source asset.
type Composer struct {
	format  string
	quality int
	font    *opentype.Font
}

// NewComposer parses the embedded typeface and validates the output format.
func NewComposer(opts Options) (*Composer, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "jpg"
	}
	if format != "jpg" && format != "png" {
		return nil, fmt.Errorf("compose: unsupported output format %q", format)
	}
	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("compose: parse font: %w", err)
	}
	return &Composer{format: format, quality: quality, font: fnt}, nil
}

// Format returns the output extension the composer encodes to.
func (c *Composer) Format() string {
	return c.format
}

// Compose scales and center-crops the source to exactly ratio.Width x
// ratio.Height, draws the overlay text in a bottom banner, and encodes the
// result. Unreadable sources and unsupported codecs yield
// domain.ErrCompositionFailed; overlong text is truncated, never an error.
func (c *Composer) Compose(src domain.SourceAsset, ratio domain.AspectRatio, text string) (domain.Creative, error) {
	if ratio.Width <= 0 || ratio.Height <= 0 {
		return domain.Creative{}, fmt.Errorf("%w: invalid target size %dx%d", domain.ErrCompositionFailed, ratio.Width, ratio.Height)
	}
	decoded, err := imaging.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return domain.Creative{}, fmt.Errorf("%w: decode source for %s: %v", domain.ErrCompositionFailed, src.ProductID, err)
	}

	canvas := imaging.Fill(decoded, ratio.Width, ratio.Height, imaging.Center, imaging.Lanczos)

	applied := strings.TrimSpace(text)
	if applied != "" {
		applied, err = c.drawBanner(canvas, applied)
		if err != nil {
			return domain.Creative{}, fmt.Errorf("%w: overlay for %s: %v", domain.ErrCompositionFailed, src.ProductID, err)
		}
	}

	data, err := c.encode(canvas)
	if err != nil {
		return domain.Creative{}, fmt.Errorf("%w: encode %s: %v", domain.ErrCompositionFailed, src.ProductID, err)
	}

	return domain.Creative{
		ProductID:   src.ProductID,
		Ratio:       ratio,
		OverlayText: applied,
		Format:      c.format,
		Data:        data,
	}, nil
}

// drawBanner renders text centered in a solid strip along the bottom edge.
// It shrinks the font down to minFontSize to make the text fit, then
// truncates with an ellipsis. Returns the text actually applied.
func (c *Composer) drawBanner(canvas *image.NRGBA, text string) (string, error) {
	bounds := canvas.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	hPad := max(16, width/20)
	vPad := max(8, height/50)
	maxTextWidth := width - 2*hPad

	size := height / 12
	if size > maxFontSize {
		size = maxFontSize
	}
	if size < minFontSize {
		size = minFontSize
	}

	face, _, err := c.fitFace(text, maxTextWidth, size)
	if err != nil {
		return "", err
	}

	if font.MeasureString(face, text).Ceil() > maxTextWidth {
		text = truncateToWidth(face, text, maxTextWidth)
	}

	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	bannerHeight := textHeight + 2*vPad
	if bannerHeight > height {
		bannerHeight = height
	}
	bannerTop := height - bannerHeight

	banner := image.Rect(bounds.Min.X, bounds.Min.Y+bannerTop, bounds.Max.X, bounds.Max.Y)
	draw.Draw(canvas, banner, &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	textWidth := font.MeasureString(face, text).Ceil()
	x := bounds.Min.X + (width-textWidth)/2
	if x < bounds.Min.X+hPad {
		x = bounds.Min.X + hPad
	}
	baseline := bounds.Min.Y + bannerTop + vPad + metrics.Ascent.Ceil()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	drawer.DrawString(text)
	return text, nil
}

// fitFace builds a face at the largest size that lets text fit maxTextWidth,
// shrinking stepwise but never below minFontSize. Returns the face and the
// size it was built at.
func (c *Composer) fitFace(text string, maxTextWidth, size int) (font.Face, int, error) {
	for {
		face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, 0, err
		}
		if font.MeasureString(face, text).Ceil() <= maxTextWidth || size <= minFontSize {
			return face, size, nil
		}
		size -= 2
		if size < minFontSize {
			size = minFontSize
		}
	}
}

// truncateToWidth trims runes from the end and appends an ellipsis until the
// string fits. Degenerate widths yield an empty overlay rather than a failure.
func truncateToWidth(face font.Face, text string, maxWidth int) string {
	runes := []rune(text)
	for n := len(runes); n > 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + ellipsis
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	if font.MeasureString(face, ellipsis).Ceil() <= maxWidth {
		return ellipsis
	}
	return ""
}

func (c *Composer) encode(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	switch c.format {
	case "png":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, err
		}
	default:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(c.quality)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
