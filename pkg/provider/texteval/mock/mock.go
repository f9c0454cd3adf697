// Package mock provides a test double for the texteval.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/vaanilabs/vaani/pkg/provider/texteval"
)

// EvaluateCall records a single invocation of Provider.Evaluate.
type EvaluateCall struct {
	Ctx context.Context
	Req texteval.Request
}

// Provider is a mock implementation of texteval.Provider.
type Provider struct {
	mu sync.Mutex

	// Metrics is returned by every Evaluate call.
	Metrics *texteval.Metrics

	// EvaluateErr, if non-nil, is returned as the error from Evaluate.
	EvaluateErr error

	// EvaluateCalls records every call in order.
	EvaluateCalls []EvaluateCall
}

// Compile-time assertion that Provider implements texteval.Provider.
var _ texteval.Provider = (*Provider)(nil)

// Evaluate records the call and returns the configured metrics or error.
func (p *Provider) Evaluate(ctx context.Context, req texteval.Request) (*texteval.Metrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EvaluateCalls = append(p.EvaluateCalls, EvaluateCall{Ctx: ctx, Req: req})
	if p.EvaluateErr != nil {
		return nil, p.EvaluateErr
	}
	if p.Metrics != nil {
		return p.Metrics, nil
	}
	return &texteval.Metrics{}, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EvaluateCalls = nil
}
