package resilience

import (
	"context"

	"github.com/vaanilabs/vaani/pkg/provider/grader"
)

// GraderFallback implements [grader.Provider] with automatic failover across
// multiple LLM grading backends. Useful when a hosted model hits rate limits
// and a local model should absorb the remainder.
type GraderFallback struct {
	group *FallbackGroup[grader.Provider]
}

// Compile-time interface assertion.
var _ grader.Provider = (*GraderFallback)(nil)

// NewGraderFallback creates a [GraderFallback] with primary as the preferred
// backend.
func NewGraderFallback(primary grader.Provider, primaryName string, cfg FallbackConfig) *GraderFallback {
	return &GraderFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional grading provider as a fallback.
func (f *GraderFallback) AddFallback(name string, provider grader.Provider) {
	f.group.AddFallback(name, provider)
}

// Grade runs the request against the first healthy provider.
func (f *GraderFallback) Grade(ctx context.Context, req grader.Request) (*grader.Result, error) {
	return ExecuteWithResult(f.group, func(p grader.Provider) (*grader.Result, error) {
		return p.Grade(ctx, req)
	})
}
