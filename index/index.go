// Package index builds, persists and queries the flat document similarity
// index. The index is rebuilt as a whole by each run of the offline indexer
// and is read-only at query time.
package index

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"ragchat/types"
)

// Save writes idx next to path and renames it into place, so a failed run
// never leaves a truncated index behind.
func Save(idx *types.DocumentIndex, path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(idx); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode index: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// Load reads a persisted index and validates its format tag and the
// embedding-dimension invariant before handing it to the retriever.
func Load(path string) (*types.DocumentIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var idx types.DocumentIndex
	if err := gob.NewDecoder(file).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}

	if idx.Version != types.IndexVersion {
		return nil, fmt.Errorf("unsupported index version %d", idx.Version)
	}
	for _, doc := range idx.Documents {
		if doc.Degraded {
			continue
		}
		if len(doc.Embedding) != idx.Dimension {
			return nil, fmt.Errorf("index corrupt: document %q has dimension %d, want %d",
				doc.Name, len(doc.Embedding), idx.Dimension)
		}
	}
	return &idx, nil
}

// CosineSimilarity returns dot(a,b) / (||a|| * ||b||), or 0 when the vectors
// differ in length or either norm is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
