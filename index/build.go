package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ragchat/model"
	"ragchat/types"
)

// Build enumerates every .txt file directly under srcDir (in directory
// order), embeds each file's contents and writes the resulting index to
// outPath atomically. An unreadable file aborts the whole run — a silently
// incomplete index is worse than no index. An embedding failure does not:
// the document is kept, tagged degraded, and skipped at query time.
// Returns the number of indexed documents.
func Build(ctx context.Context, embedder model.Embedder, srcDir, outPath string) (int, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, fmt.Errorf("read source directory: %w", err)
	}

	idx := &types.DocumentIndex{
		Version:   types.IndexVersion,
		Dimension: embedder.Dimension(),
	}
	if info, ok := embedder.(interface{ ModelInfo() string }); ok {
		idx.Model = info.ModelInfo()
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}

		doc := types.IndexedDocument{
			ID:   uuid.New(),
			Name: name,
			Text: string(data),
		}

		vec, err := embedder.Embed(ctx, doc.Text)
		switch {
		case err != nil:
			slog.Warn("embedding failed, indexing document as degraded", "file", name, "error", err)
			doc.Degraded = true
		case len(vec) != idx.Dimension:
			return 0, fmt.Errorf("embed %s: got dimension %d, want %d", name, len(vec), idx.Dimension)
		default:
			doc.Embedding = vec
		}

		idx.Documents = append(idx.Documents, doc)
		slog.Info("indexed", "file", name, "degraded", doc.Degraded)
	}

	if err := Save(idx, outPath); err != nil {
		return 0, err
	}
	return len(idx.Documents), nil
}
