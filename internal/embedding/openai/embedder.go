package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/embedding"
	"github.com/educhat/backend/pkg/logger"
)

type Embedder struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
}

func NewEmbedder(apiKey, model string, dimensions, timeoutSec int) *Embedder {
	if timeoutSec == 0 {
		timeoutSec = 15
	}

	logger.Info("Embedding client initialized",
		zap.String("model", model),
		zap.Int("dimensions", dimensions),
	)

	return &Embedder{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
		timeout:    time.Duration(timeoutSec) * time.Second,
	}
}

// NewEmbedderWithClient is used by tests to point the embedder at a fake
// server.
func NewEmbedderWithClient(client *openai.Client, model string, dimensions int) *Embedder {
	return &Embedder{
		client:     client,
		model:      model,
		dimensions: dimensions,
		timeout:    15 * time.Second,
	}
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embedding.ErrEmbeddingFailed, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			embedding.ErrEmbeddingFailed, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))
		copy(vector, data.Embedding)
		vectors[i] = vector
	}

	logger.Debug("Embeddings generated", zap.Int("count", len(vectors)))

	return vectors, nil
}
