// Package rest provides a texteval.Provider backed by the evaluation
// service's REST endpoint.
//
// Usage:
//
//	p, err := rest.New("http://texteval.internal:9100")
//	m, err := p.Evaluate(ctx, texteval.Request{Reference: ref, Hypothesis: hyp})
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vaanilabs/vaani/pkg/provider/texteval"
)

const defaultTimeout = 30 * time.Second

// Compile-time assertion that Provider implements texteval.Provider.
var _ texteval.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the end-to-end HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements texteval.Provider against the REST endpoint.
type Provider struct {
	serverURL  string
	httpClient *http.Client
}

// New creates a Provider for the evaluation service at serverURL. serverURL
// must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("rest: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Evaluate POSTs the request to the /evaluate endpoint and decodes the
// metrics from the reply.
func (p *Provider) Evaluate(ctx context.Context, req texteval.Request) (*texteval.Metrics, error) {
	if req.Reference == "" {
		return nil, errors.New("rest: reference text must not be empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("rest: marshal request: %w", err)
	}

	endpoint := p.serverURL + "/evaluate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rest: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rest: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rest: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rest: read response body: %w", err)
	}

	var m texteval.Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("rest: parse JSON response: %w", err)
	}
	return &m, nil
}
