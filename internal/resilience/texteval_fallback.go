package resilience

import (
	"context"

	"github.com/vaanilabs/vaani/pkg/provider/texteval"
)

// TextEvalFallback implements [texteval.Provider] with automatic failover
// across multiple text evaluation backends.
type TextEvalFallback struct {
	group *FallbackGroup[texteval.Provider]
}

// Compile-time interface assertion.
var _ texteval.Provider = (*TextEvalFallback)(nil)

// NewTextEvalFallback creates a [TextEvalFallback] with primary as the
// preferred backend.
func NewTextEvalFallback(primary texteval.Provider, primaryName string, cfg FallbackConfig) *TextEvalFallback {
	return &TextEvalFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional text evaluation provider as a fallback.
func (f *TextEvalFallback) AddFallback(name string, provider texteval.Provider) {
	f.group.AddFallback(name, provider)
}

// Evaluate runs the request against the first healthy provider.
func (f *TextEvalFallback) Evaluate(ctx context.Context, req texteval.Request) (*texteval.Metrics, error) {
	return ExecuteWithResult(f.group, func(p texteval.Provider) (*texteval.Metrics, error) {
		return p.Evaluate(ctx, req)
	})
}
