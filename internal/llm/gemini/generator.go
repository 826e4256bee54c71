package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/educhat/backend/internal/llm"
	"github.com/educhat/backend/pkg/logger"
)

type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func NewGenerator(ctx context.Context, apiKey, model string, temperature float32, maxTokens, timeoutSec int) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if timeoutSec == 0 {
		timeoutSec = 30
	}

	logger.Info("Gemini generator initialized", zap.String("model", model))

	return &Generator{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
	}, nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	if g.maxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.maxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", llm.ErrMalformedResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if b.Len() == 0 {
		return "", llm.ErrMalformedResponse
	}

	return b.String(), nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.ErrTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &llm.HTTPError{Status: apiErr.Code, Message: apiErr.Message}
	}

	return fmt.Errorf("generation request failed: %w", err)
}
