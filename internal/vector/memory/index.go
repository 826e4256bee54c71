package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrEmptyIndex = errors.New("cannot build index with zero entries")

type Entry struct {
	Text     string
	Vector   []float32
	Metadata map[string]string
}

type Hit struct {
	Text     string
	Metadata map[string]string
	Score    float64
}

// Index is an ephemeral brute-force cosine-similarity index. One instance is
// built per query from that user's documents and discarded afterwards; it is
// never mutated after construction and never shared across requests. Index
// sizes stay small (<=50 entries), so exact search beats any ANN structure.
type Index struct {
	entries []Entry
	dim     int
}

func New(entries []Entry) (*Index, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyIndex
	}

	dim := len(entries[0].Vector)
	for i, entry := range entries {
		if len(entry.Vector) != dim {
			return nil, fmt.Errorf("entry %d has dimension %d, want %d", i, len(entry.Vector), dim)
		}
	}

	return &Index{entries: entries, dim: dim}, nil
}

func (ix *Index) Size() int {
	return len(ix.entries)
}

// Search returns the k entries most similar to the query vector, sorted by
// descending cosine similarity. Ties keep insertion order. k is clamped to
// the index size.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d", len(query), ix.dim)
	}

	if k <= 0 {
		return []Hit{}, nil
	}
	if k > len(ix.entries) {
		k = len(ix.entries)
	}

	hits := make([]Hit, len(ix.entries))
	for i, entry := range ix.entries {
		hits[i] = Hit{
			Text:     entry.Text,
			Metadata: entry.Metadata,
			Score:    cosineSimilarity(query, entry.Vector),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return hits[:k], nil
}

func cosineSimilarity(a, b []float32) float64 {
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
