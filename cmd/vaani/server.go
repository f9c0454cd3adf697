package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaanilabs/vaani/internal/assess"
	"github.com/vaanilabs/vaani/internal/config"
	"github.com/vaanilabs/vaani/internal/health"
	"github.com/vaanilabs/vaani/internal/observe"
	"github.com/vaanilabs/vaani/pkg/types"
)

// newServer assembles the HTTP surface: the assessment endpoints, health
// probes and the Prometheus scrape endpoint, all behind the tracing
// middleware.
func newServer(cfg config.ServerConfig, svc *assess.Service, h *health.Handler, metrics *observe.Metrics) *http.Server {
	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	api := &apiHandler{svc: svc}
	mux.HandleFunc("POST /v1/assessments", api.submit)
	mux.HandleFunc("GET /v1/users/{user}/trends", api.trends)

	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type apiHandler struct {
	svc *assess.Service
}

// submitRequest is the wire shape of one assessment submission.
type submitRequest struct {
	UserID       string `json:"userId"`
	SessionID    string `json:"sessionId"`
	SubSessionID string `json:"subSessionId"`
	ContentID    string `json:"contentId"`
	ContentType  string `json:"contentType"`
	Language     string `json:"language"`
	OriginalText string `json:"originalText"`
	AudioBase64  string `json:"audioBase64"`
	Mode         string `json:"mode"`
	IsRetry      bool   `json:"isRetry"`
	CollectionID string `json:"collectionId,omitempty"`

	Mechanics         bool `json:"mechanics,omitempty"`
	CorrectnessCount  int  `json:"correctnessCount,omitempty"`
	SuppliedSyllables int  `json:"totalSyllableCount,omitempty"`
}

func (h *apiHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return
	}

	res, err := h.svc.Submit(r.Context(), assess.Submission{
		UserID:            req.UserID,
		SessionID:         req.SessionID,
		SubSessionID:      req.SubSessionID,
		ContentID:         req.ContentID,
		ContentType:       types.ContentType(req.ContentType),
		Language:          req.Language,
		OriginalText:      req.OriginalText,
		AudioBase64:       req.AudioBase64,
		Mode:              types.Mode(req.Mode),
		IsRetry:           req.IsRetry,
		CollectionID:      req.CollectionID,
		Mechanics:         req.Mechanics,
		CorrectnessCount:  req.CorrectnessCount,
		SuppliedSyllables: req.SuppliedSyllables,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, assess.ErrEmptyResponse):
		// The audio produced no usable transcript; the client should
		// re-record, not retry as-is.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, assess.ErrInvalidSubmission):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("assessment failed", "user_id", req.UserID, "err", err)
		writeError(w, http.StatusBadGateway, "assessment failed, please retry")
	}
}

func (h *apiHandler) trends(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user")
	language := r.URL.Query().Get("language")
	if language == "" {
		writeError(w, http.StatusBadRequest, "query parameter language is required")
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	res, err := h.svc.Trends(r.Context(), userID, language, limit)
	if err != nil {
		slog.Error("trends lookup failed", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "trends lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode error", "err", err)
	}
}
