package llm

import (
	"context"

	"github.com/educhat/backend/pkg/circuitbreaker"
)

type breakerGenerator struct {
	inner Generator
	cb    *circuitbreaker.CircuitBreaker
}

// WithBreaker wraps a Generator with a circuit breaker. An open circuit
// fails the call immediately, which the pipeline treats like any other
// generation failure. The breaker never retries.
func WithBreaker(inner Generator, cb *circuitbreaker.CircuitBreaker) Generator {
	return &breakerGenerator{inner: inner, cb: cb}
}

func (g *breakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := g.cb.Execute(ctx, func() error {
		var genErr error
		text, genErr = g.inner.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
