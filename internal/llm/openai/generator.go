package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/llm"
	"github.com/educhat/backend/pkg/logger"
)

type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func NewGenerator(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Generator {
	return NewGeneratorWithClient(openai.NewClient(apiKey), model, temperature, maxTokens, timeoutSec)
}

// NewGeneratorWithClient accepts a pre-built client so tests can point at a
// fake server.
func NewGeneratorWithClient(client *openai.Client, model string, temperature float32, maxTokens, timeoutSec int) *Generator {
	if timeoutSec == 0 {
		timeoutSec = 30
	}

	logger.Info("OpenAI generator initialized", zap.String("model", model))

	return &Generator{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrMalformedResponse
	}

	logger.Debug("Completion generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.ErrTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.HTTPError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.HTTPError{Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}

	return fmt.Errorf("generation request failed: %w", err)
}
