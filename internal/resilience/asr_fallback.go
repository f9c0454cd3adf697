package resilience

import (
	"context"

	"github.com/vaanilabs/vaani/pkg/provider/asr"
)

// ASRFallback implements [asr.Provider] with automatic failover across
// multiple speech recognition backends. Each backend has its own circuit
// breaker, so a flapping batch endpoint does not take the streaming endpoint
// down with it.
type ASRFallback struct {
	group *FallbackGroup[asr.Provider]
}

// Compile-time interface assertion.
var _ asr.Provider = (*ASRFallback)(nil)

// NewASRFallback creates an [ASRFallback] with primary as the preferred
// backend.
func NewASRFallback(primary asr.Provider, primaryName string, cfg FallbackConfig) *ASRFallback {
	return &ASRFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional speech provider as a fallback.
func (f *ASRFallback) AddFallback(name string, provider asr.Provider) {
	f.group.AddFallback(name, provider)
}

// Transcribe runs the request against the first healthy provider. If the
// primary fails, subsequent fallbacks are tried in registration order.
func (f *ASRFallback) Transcribe(ctx context.Context, req asr.Request) (*asr.Result, error) {
	return ExecuteWithResult(f.group, func(p asr.Provider) (*asr.Result, error) {
		return p.Transcribe(ctx, req)
	})
}
