package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/docs"
	"github.com/educhat/backend/internal/embedding"
	"github.com/educhat/backend/internal/llm"
	"github.com/educhat/backend/internal/metrics"
	"github.com/educhat/backend/internal/storage/models"
	"github.com/educhat/backend/internal/vector/memory"
	"github.com/educhat/backend/pkg/logger"
)

const DefaultTopK = 3

type SourceType string

const (
	SourceRAG     SourceType = "rag"
	SourceGeneral SourceType = "general"
	SourceError   SourceType = "error"
)

// Query holds the immutable parameters of one chat turn.
type Query struct {
	Question            string
	UserID              string
	Role                docs.Role
	Name                string
	UseGeneralKnowledge bool
}

type Answer struct {
	ID         string
	Text       string
	SourceType SourceType
	LatencyMS  int
}

// HistoryStore persists completed chat turns. Writes are best-effort: a
// persistence failure never fails the request.
type HistoryStore interface {
	InsertChatRecord(record *models.ChatRecord) error
}

// Pipeline runs one chat turn end to end: fetch the user's role-specific
// documents, embed, build a private in-memory index, retrieve top-k,
// generate a grounded answer, and degrade to an ungrounded answer whenever
// retrieval comes up empty or anything in the grounded path fails. The
// index and documents live only for the duration of the call, so one user's
// data can never leak into another user's retrieval context.
type Pipeline struct {
	provider  docs.Provider
	embedder  embedding.Embedder
	generator llm.Generator
	history   HistoryStore
	fallback  FallbackPolicy
	topK      int
}

func NewPipeline(provider docs.Provider, embedder embedding.Embedder, generator llm.Generator, history HistoryStore, fallback FallbackPolicy, topK int) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Pipeline{
		provider:  provider,
		embedder:  embedder,
		generator: generator,
		history:   history,
		fallback:  fallback,
		topK:      topK,
	}
}

// Answer processes one chat turn. The only error it returns is
// docs.ErrInvalidRole, a caller defect; every internal failure degrades to
// a general-knowledge answer instead.
func (p *Pipeline) Answer(ctx context.Context, q Query) (*Answer, error) {
	start := time.Now()

	if !q.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", docs.ErrInvalidRole, q.Role)
	}
	if q.Name == "" {
		q.Name = DefaultName
	}

	var text string
	source := SourceGeneral

	if q.UseGeneralKnowledge {
		logger.Debug("General knowledge requested, skipping retrieval",
			zap.String("user_id", q.UserID),
		)
		text = p.generalAnswer(ctx, q)
	} else {
		text, source = p.groundedAnswer(ctx, q)
	}

	answer := &Answer{
		ID:         uuid.New().String(),
		Text:       text,
		SourceType: source,
		LatencyMS:  int(time.Since(start).Milliseconds()),
	}

	p.record(q, answer)

	metrics.AnswersTotal.WithLabelValues(string(source)).Inc()
	metrics.AnswerDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())

	logger.Info("Chat turn answered",
		zap.String("chat_id", answer.ID),
		zap.String("user_id", q.UserID),
		zap.String("role", string(q.Role)),
		zap.String("source_type", string(source)),
		zap.Int("latency_ms", answer.LatencyMS),
	)

	return answer, nil
}

// groundedAnswer attempts the full retrieve-and-generate path. Any failure
// or soft miss falls back to the general-knowledge path; the cause is
// logged, never surfaced.
func (p *Pipeline) groundedAnswer(ctx context.Context, q Query) (string, SourceType) {
	documents, err := p.provider.FetchDocuments(ctx, q.UserID, q.Role)
	if err != nil {
		logger.Warn("Document fetch failed, falling back",
			zap.String("user_id", q.UserID),
			zap.Error(err),
		)
		metrics.FallbacksTotal.WithLabelValues("fetch_error").Inc()
		return p.generalAnswer(ctx, q), SourceGeneral
	}

	if len(documents) == 0 {
		logger.Info("No documents for user, falling back",
			zap.String("user_id", q.UserID),
			zap.String("role", string(q.Role)),
		)
		metrics.FallbacksTotal.WithLabelValues("no_data").Inc()
		return p.generalAnswer(ctx, q), SourceGeneral
	}

	text, err := p.generateGrounded(ctx, q, documents)
	if err != nil {
		logger.Warn("Grounded path failed, falling back",
			zap.String("user_id", q.UserID),
			zap.Error(err),
		)
		metrics.FallbacksTotal.WithLabelValues("grounded_error").Inc()
		return p.generalAnswer(ctx, q), SourceGeneral
	}

	if p.fallback.Triggered(text) {
		logger.Info("Sentinel phrase in grounded answer, re-asking ungrounded",
			zap.String("user_id", q.UserID),
		)
		metrics.FallbacksTotal.WithLabelValues("sentinel").Inc()
		return p.generalAnswer(ctx, q), SourceGeneral
	}

	return text, SourceRAG
}

func (p *Pipeline) generateGrounded(ctx context.Context, q Query, documents []docs.Document) (string, error) {
	questionVector, err := p.embedder.Embed(ctx, q.Question)
	if err != nil {
		return "", err
	}

	contents := make([]string, len(documents))
	for i, doc := range documents {
		contents[i] = doc.Content
	}

	vectors, err := p.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return "", err
	}

	entries := make([]memory.Entry, len(documents))
	for i, doc := range documents {
		metadata := map[string]string{
			"id":    doc.ID,
			"title": doc.Title,
		}
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		entries[i] = memory.Entry{
			Text:     doc.Content,
			Vector:   vectors[i],
			Metadata: metadata,
		}
	}

	index, err := memory.New(entries)
	if err != nil {
		return "", err
	}

	hits, err := index.Search(questionVector, p.topK)
	if err != nil {
		return "", err
	}

	metrics.RetrievedDocs.Observe(float64(len(hits)))

	prompt := groundedPrompt(string(q.Role), q.Name, q.UserID, formatContext(hits), q.Question)

	return p.generator.Generate(ctx, prompt)
}

// generalAnswer is the path of last resort. Generator failure here turns
// into an apology embedding the error detail, still delivered as a normal
// answer.
func (p *Pipeline) generalAnswer(ctx context.Context, q Query) string {
	text, err := p.generator.Generate(ctx, generalPrompt(string(q.Role), q.Question))
	if err != nil {
		logger.Error("General-knowledge generation failed",
			zap.String("user_id", q.UserID),
			zap.Error(err),
		)
		return fmt.Sprintf(apologyTemplate, err)
	}
	return text
}

func (p *Pipeline) record(q Query, answer *Answer) {
	if p.history == nil {
		return
	}

	err := p.history.InsertChatRecord(&models.ChatRecord{
		ID:         answer.ID,
		UserID:     q.UserID,
		Role:       string(q.Role),
		Question:   q.Question,
		Answer:     answer.Text,
		SourceType: string(answer.SourceType),
		LatencyMS:  answer.LatencyMS,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		logger.Warn("Failed to persist chat record",
			zap.String("chat_id", answer.ID),
			zap.Error(err),
		)
	}
}
