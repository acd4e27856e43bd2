package image

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	ProductID string
	Prompt    string
	// Width/Height are a size hint derived from the largest target ratio;
	// providers may return other dimensions, composition normalizes them.
	Width     int
	Height    int
	Seed      int
	RequestID string
}

// Asset represents a generated image.
type Asset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Model  string
}

// Generator is the contract implemented by all image providers. A single call
// is a single attempt: retry policy lives in the Retrying decorator, and the
// reuse-first branch lives in the orchestrator, never here.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Asset, error)
	Name() string
}

// DeterministicSeed derives a stable positive seed from the given parts so
// providers that honour seeds produce the same image for the same product and
// prompt across runs.
func DeterministicSeed(values ...any) int {
	if len(values) == 0 {
		return 0
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	n := binary.BigEndian.Uint32(sum[:4]) % 2147483647
	if n == 0 {
		n = 1
	}
	return int(n)
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}
