package model

import (
	"context"
	"log/slog"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// EmbedOrZero degrades an embedding failure to a zero vector of the
// embedder's dimensionality instead of propagating the error. Retrieval must
// keep working through transient provider failures; a zero vector scores
// zero against everything, which the caller treats as "nothing retrieved".
func EmbedOrZero(ctx context.Context, e Embedder, text string) []float32 {
	vec, err := e.Embed(ctx, text)
	if err != nil {
		slog.Warn("embedding failed, degrading to zero vector", "error", err)
		return make([]float32, e.Dimension())
	}
	return vec
}

// IsZero reports whether every component of vec is zero.
func IsZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
