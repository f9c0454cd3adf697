// Package mock provides a test double for the grader.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/vaanilabs/vaani/pkg/provider/grader"
)

// GradeCall records a single invocation of Provider.Grade.
type GradeCall struct {
	Ctx context.Context
	Req grader.Request
}

// Provider is a mock implementation of grader.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by every Grade call.
	Result *grader.Result

	// GradeErr, if non-nil, is returned as the error from Grade.
	GradeErr error

	// GradeCalls records every call in order.
	GradeCalls []GradeCall
}

// Compile-time assertion that Provider implements grader.Provider.
var _ grader.Provider = (*Provider)(nil)

// Grade records the call and returns the configured result or error.
func (p *Provider) Grade(ctx context.Context, req grader.Request) (*grader.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GradeCalls = append(p.GradeCalls, GradeCall{Ctx: ctx, Req: req})
	if p.GradeErr != nil {
		return nil, p.GradeErr
	}
	if p.Result != nil {
		return p.Result, nil
	}
	return &grader.Result{}, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GradeCalls = nil
}
