package index

import (
	"context"
	"log/slog"

	"ragchat/model"
)

// Retriever answers "which indexed document is closest to this query".
// The index is loaded per call; a fresh indexing run is picked up without a
// restart and a missing index is a soft condition, not an error.
type Retriever struct {
	embedder model.Embedder
	path     string
	logger   *slog.Logger
}

func NewRetriever(embedder model.Embedder, path string) *Retriever {
	return &Retriever{
		embedder: embedder,
		path:     path,
		logger:   slog.Default(),
	}
}

// Retrieve returns the text of the best-matching document, or "" when the
// index is missing/corrupt/empty, was built against a different embedding
// space, or the query could not be embedded. Ties resolve to the first
// document in index order.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	idx, err := Load(r.path)
	if err != nil {
		r.logger.Warn("document index unavailable", "path", r.path, "error", err)
		return ""
	}
	if len(idx.Documents) == 0 {
		return ""
	}

	// An index built against a different embedding space would score every
	// document 0 and hand back the first one. Treat it as unavailable.
	if idx.Dimension != r.embedder.Dimension() {
		r.logger.Warn("document index dimension does not match embedder, rebuild required",
			"path", r.path, "index", idx.Dimension, "embedder", r.embedder.Dimension())
		return ""
	}
	if info, ok := r.embedder.(interface{ ModelInfo() string }); ok &&
		idx.Model != "" && idx.Model != info.ModelInfo() {
		r.logger.Warn("document index built with a different embedding model, rebuild required",
			"path", r.path, "index", idx.Model, "embedder", info.ModelInfo())
		return ""
	}

	queryVec := model.EmbedOrZero(ctx, r.embedder, query)
	if model.IsZero(queryVec) {
		return ""
	}

	bestScore := -1.0
	bestText := ""
	for _, doc := range idx.Documents {
		if doc.Degraded {
			continue
		}
		if score := CosineSimilarity(queryVec, doc.Embedding); score > bestScore {
			bestScore = score
			bestText = doc.Text
		}
	}
	return bestText
}
