// Package answer defines the upstream that produces answers on cache misses.
package answer

import "context"

// Generator produces an answer for a raw query.
type Generator interface {
	Generate(ctx context.Context, query string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, query string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// Stub answers every query with a fixed template. It stands in for a real
// model call.
type Stub struct{}

// Generate returns "AI response for: <query>" using the query as received.
func (Stub) Generate(_ context.Context, query string) (string, error) {
	return "AI response for: " + query, nil
}
