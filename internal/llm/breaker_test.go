package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educhat/backend/pkg/circuitbreaker"
)

type scriptedGenerator struct {
	text  string
	err   error
	calls int
}

func (g *scriptedGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.text, g.err
}

func TestWithBreakerPassesThrough(t *testing.T) {
	inner := &scriptedGenerator{text: "jawaban"}
	generator := WithBreaker(inner, circuitbreaker.NewCircuitBreaker("test", circuitbreaker.Config{}))

	text, err := generator.Generate(context.Background(), "pertanyaan")
	require.NoError(t, err)
	assert.Equal(t, "jawaban", text)
	assert.Equal(t, 1, inner.calls)
}

func TestWithBreakerPropagatesInnerError(t *testing.T) {
	inner := &scriptedGenerator{err: ErrTimeout}
	generator := WithBreaker(inner, circuitbreaker.NewCircuitBreaker("test", circuitbreaker.Config{}))

	_, err := generator.Generate(context.Background(), "pertanyaan")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWithBreakerFailsFastWhenOpen(t *testing.T) {
	inner := &scriptedGenerator{err: errors.New("service down")}
	cb := circuitbreaker.NewCircuitBreaker("test", circuitbreaker.Config{FailureThreshold: 2})
	generator := WithBreaker(inner, cb)

	for i := 0; i < 2; i++ {
		generator.Generate(context.Background(), "pertanyaan")
	}
	require.Equal(t, 2, inner.calls)

	_, err := generator.Generate(context.Background(), "pertanyaan")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls, "open circuit never reaches the model")
}
