package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educhat/backend/internal/llm"
)

func newFakeGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"

	return NewGeneratorWithClient(openai.NewClientWithConfig(cfg), "gpt-4o-mini", 0.7, 1024, 5)
}

func completionResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
		},
	}
}

func TestGenerate(t *testing.T) {
	var gotModel string
	generator := newFakeGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req["model"].(string)

		json.NewEncoder(w).Encode(completionResponse("Budi berada di kelas 5A."))
	})

	answer, err := generator.Generate(context.Background(), "Kelas berapa Budi?")
	require.NoError(t, err)
	assert.Equal(t, "Budi berada di kelas 5A.", answer)
	assert.Equal(t, "gpt-4o-mini", gotModel)
}

func TestGenerateEmptyChoices(t *testing.T) {
	generator := newFakeGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	_, err := generator.Generate(context.Background(), "halo")
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestGenerateAPIErrorBecomesHTTPError(t *testing.T) {
	generator := newFakeGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "requests"},
		})
	})

	_, err := generator.Generate(context.Background(), "halo")
	require.Error(t, err)

	var httpErr *llm.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Contains(t, httpErr.Message, "rate limited")
}

func TestGenerateTimeout(t *testing.T) {
	generator := newFakeGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(completionResponse("terlambat"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := generator.Generate(ctx, "halo")
	assert.ErrorIs(t, err, llm.ErrTimeout)
}
