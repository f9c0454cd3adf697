package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vaanilabs/vaani/pkg/provider/asr"
	"github.com/vaanilabs/vaani/pkg/provider/grader"
	"github.com/vaanilabs/vaani/pkg/provider/texteval"
)

// ErrProviderNotRegistered is returned when a Create call names a provider
// that has no registered factory.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// ASRFactory constructs a speech recognition provider from its config entry.
type ASRFactory func(entry ProviderEntry) (asr.Provider, error)

// TextEvalFactory constructs a text evaluation provider from its config entry.
type TextEvalFactory func(entry ProviderEntry) (texteval.Provider, error)

// GraderFactory constructs a comprehension grader from its config entry.
type GraderFactory func(entry ProviderEntry) (grader.Provider, error)

// Registry maps provider names to factories. The server registers the
// built-in factories at startup; tests register mocks. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	asr      map[string]ASRFactory
	textEval map[string]TextEvalFactory
	grader   map[string]GraderFactory
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		asr:      make(map[string]ASRFactory),
		textEval: make(map[string]TextEvalFactory),
		grader:   make(map[string]GraderFactory),
	}
}

// RegisterASR registers a speech provider factory under name, replacing any
// existing registration.
func (r *Registry) RegisterASR(name string, f ASRFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asr[name] = f
}

// RegisterTextEval registers a text evaluation factory under name.
func (r *Registry) RegisterTextEval(name string, f TextEvalFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textEval[name] = f
}

// RegisterGrader registers a grader factory under name.
func (r *Registry) RegisterGrader(name string, f GraderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grader[name] = f
}

// CreateASR builds the speech provider named by entry.
func (r *Registry) CreateASR(entry ProviderEntry) (asr.Provider, error) {
	r.mu.RLock()
	f, ok := r.asr[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("create asr provider %q: %w", entry.Name, ErrProviderNotRegistered)
	}
	return f(entry)
}

// CreateTextEval builds the text evaluation provider named by entry.
func (r *Registry) CreateTextEval(entry ProviderEntry) (texteval.Provider, error) {
	r.mu.RLock()
	f, ok := r.textEval[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("create text_eval provider %q: %w", entry.Name, ErrProviderNotRegistered)
	}
	return f(entry)
}

// CreateGrader builds the grader named by entry.
func (r *Registry) CreateGrader(entry ProviderEntry) (grader.Provider, error) {
	r.mu.RLock()
	f, ok := r.grader[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("create grader provider %q: %w", entry.Name, ErrProviderNotRegistered)
	}
	return f(entry)
}
