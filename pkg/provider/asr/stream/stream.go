// Package stream provides an asr.Provider backed by the speech service's
// WebSocket streaming endpoint. Audio is pushed in binary frames while the
// service transcribes incrementally; a finalize frame flushes the recognizer
// and the complete dual-hypothesis result comes back as the closing message.
// This is the live (online) submission path; see the batch package for the
// offline path.
package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/vaanilabs/vaani/pkg/provider/asr"
	"github.com/vaanilabs/vaani/pkg/types"
)

const (
	defaultChunkSize   = 32 * 1024
	defaultReadTimeout = 90 * time.Second
)

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithChunkSize sets the binary frame size in bytes. Defaults to 32 KiB.
func WithChunkSize(n int) Option {
	return func(p *Provider) {
		p.chunkSize = n
	}
}

// WithReadTimeout bounds the wait for the final result after the finalize
// frame. Defaults to 90 s.
func WithReadTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.readTimeout = d
	}
}

// Provider implements asr.Provider over the streaming WebSocket endpoint.
type Provider struct {
	endpoint    string
	chunkSize   int
	readTimeout time.Duration
}

// New creates a Provider for the speech service WebSocket endpoint
// (e.g., "ws://speech.internal:9000/stream"). endpoint must be non-empty.
func New(endpoint string, opts ...Option) (*Provider, error) {
	if endpoint == "" {
		return nil, errors.New("stream: endpoint must not be empty")
	}
	p := &Provider{
		endpoint:    endpoint,
		chunkSize:   defaultChunkSize,
		readTimeout: defaultReadTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// startMessage opens a streaming session on the service side.
type startMessage struct {
	Type        string            `json:"type"`
	Language    string            `json:"language"`
	ContentType types.ContentType `json:"content_type"`
}

// controlMessage flushes the recognizer.
type controlMessage struct {
	Type string `json:"type"`
}

// resultMessage is the terminal frame carrying both hypotheses.
type resultMessage struct {
	Type string `json:"type"`

	Denoised struct {
		Output []asr.Output `json:"output"`
	} `json:"asrOutDenoisedOutput"`
	BeforeDenoised struct {
		Output []asr.Output `json:"output"`
	} `json:"asrOutBeforeDenoised"`

	PauseCount int     `json:"pause_count"`
	AvgPause   float64 `json:"avg_pause"`

	Prosody *types.ProsodyFluency `json:"prosody_fluency"`
}

// Transcribe streams the decoded audio over a fresh WebSocket connection and
// waits for the service's final result frame.
func (p *Provider) Transcribe(ctx context.Context, req asr.Request) (*asr.Result, error) {
	if req.AudioBase64 == "" {
		return nil, errors.New("stream: audio payload must not be empty")
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("stream: decode audio payload: %w", err)
	}

	wsURL, err := p.buildURL(req)
	if err != nil {
		return nil, fmt.Errorf("stream: build URL: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("stream: dial: %w", err)
	}
	defer conn.Close(websocket.StatusInternalError, "transcription aborted")

	start, err := json.Marshal(startMessage{
		Type:        "start",
		Language:    req.Language,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("stream: marshal start frame: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, start); err != nil {
		return nil, fmt.Errorf("stream: send start frame: %w", err)
	}

	for off := 0; off < len(audio); off += p.chunkSize {
		end := off + p.chunkSize
		if end > len(audio) {
			end = len(audio)
		}
		if err := conn.Write(ctx, websocket.MessageBinary, audio[off:end]); err != nil {
			return nil, fmt.Errorf("stream: send audio frame: %w", err)
		}
	}

	finalize, err := json.Marshal(controlMessage{Type: "finalize"})
	if err != nil {
		return nil, fmt.Errorf("stream: marshal finalize frame: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, finalize); err != nil {
		return nil, fmt.Errorf("stream: send finalize frame: %w", err)
	}

	res, err := p.awaitResult(ctx, conn)
	if err != nil {
		return nil, err
	}
	conn.Close(websocket.StatusNormalClosure, "done")
	return res, nil
}

// buildURL attaches the recognition parameters as query values.
func (p *Provider) buildURL(req asr.Request) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("language", req.Language)
	if req.ContentType != "" {
		q.Set("content_type", string(req.ContentType))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// awaitResult reads frames until the terminal result frame arrives. Interim
// progress frames are discarded.
func (p *Provider) awaitResult(ctx context.Context, conn *websocket.Conn) (*asr.Result, error) {
	readCtx, cancel := context.WithTimeout(ctx, p.readTimeout)
	defer cancel()

	for {
		msgType, data, err := conn.Read(readCtx)
		if err != nil {
			return nil, fmt.Errorf("stream: read result frame: %w", err)
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg resultMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("stream: parse result frame: %w", err)
		}
		if msg.Type != "result" {
			continue
		}

		return &asr.Result{
			Denoised:    asr.Transcription{Output: msg.Denoised.Output},
			NonDenoised: asr.Transcription{Output: msg.BeforeDenoised.Output},
			PauseCount:  msg.PauseCount,
			AvgPause:    msg.AvgPause,
			Prosody:     msg.Prosody,
		}, nil
	}
}
