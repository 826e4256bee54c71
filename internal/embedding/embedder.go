package embedding

import (
	"context"
	"errors"
)

// ErrEmbeddingFailed wraps any model or transport failure. Embedding errors
// are fatal for the current query; the pipeline maps them straight to the
// general-knowledge fallback without retrying.
var ErrEmbeddingFailed = errors.New("embedding failed")

// Embedder maps text to fixed-length dense vectors. Implementations must be
// deterministic for the same text under the same model configuration, and
// must return vectors comparable by cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
