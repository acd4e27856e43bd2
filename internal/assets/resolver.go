// Package assets implements the reuse-first asset resolver: before any
// generation provider is consulted, the pipeline probes the assets directory
// for an existing product image.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"pipeline/internal/domain"
	"pipeline/internal/infra"
)

// Resolver probes {dir}/{productID}.{ext} for a fixed, ordered extension
// list. Probing is read-only; an unreadable candidate is skipped, not fatal.
type Resolver struct {
	dir        string
	extensions []string
	logger     *infra.Logger
}

// Options configures a Resolver.
type Options struct {
	Dir        string
	Extensions []string
	Logger     *infra.Logger
}

// NewResolver constructs a Resolver over the given assets directory.
func NewResolver(opts Options) (*Resolver, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("assets: directory is required")
	}
	if len(opts.Extensions) == 0 {
		return nil, errors.New("assets: extension list is required")
	}
	exts := make([]string, 0, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return &Resolver{dir: dir, extensions: exts, logger: opts.Logger}, nil
}

// Resolve returns the first readable, decodable asset matching the configured
// extension order, tagged as reused. A candidate that exists but cannot be
// decoded counts as missing for that extension and probing continues. A miss
// across all candidates is domain.ErrAssetNotFound, the expected negative
// result.
func (r *Resolver) Resolve(productID string) (domain.SourceAsset, error) {
	for _, ext := range r.extensions {
		path := filepath.Join(r.dir, productID+"."+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) && r.logger != nil {
				r.logger.Warn().Err(err).Str("path", path).Msg("assets: unreadable candidate skipped")
			}
			continue
		}
		if len(data) == 0 {
			if r.logger != nil {
				r.logger.Warn().Str("path", path).Msg("assets: empty candidate skipped")
			}
			continue
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			if r.logger != nil {
				r.logger.Warn().Err(err).Str("path", path).Msg("assets: undecodable candidate skipped")
			}
			continue
		}
		if r.logger != nil {
			r.logger.Info().Str("product_id", productID).Str("path", path).Msg("assets: found existing asset")
		}
		return domain.SourceAsset{
			ProductID:  productID,
			Path:       path,
			Data:       data,
			MIME:       mimeForExtension(ext),
			Provenance: domain.ProvenanceReused,
		}, nil
	}
	return domain.SourceAsset{}, fmt.Errorf("assets: %s: %w", productID, domain.ErrAssetNotFound)
}

// SaveGenerated writes a generated asset into the assets directory under
// {dir}/{productID}.{ext} so later runs reuse it instead of regenerating.
func (r *Resolver) SaveGenerated(asset domain.SourceAsset) (string, error) {
	ext := ExtensionForMIME(asset.MIME)
	if ext == "" {
		ext = ".png"
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("assets: ensure directory: %w", err)
	}
	path := filepath.Join(r.dir, asset.ProductID+ext)
	if err := os.WriteFile(path, asset.Data, 0o644); err != nil {
		return "", fmt.Errorf("assets: save generated asset: %w", err)
	}
	return path, nil
}

func mimeForExtension(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// ExtensionForMIME maps an image MIME type to a file extension including the
// leading dot; unknown types map to the empty string.
func ExtensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
