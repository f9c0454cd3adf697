// Package assess orchestrates one learner submission end to end: speech
// recognition, hypothesis reconciliation, tokenization and token scoring,
// fluency scoring, persistence, sub-session aggregation and the milestone
// evaluation.
//
// Within one submission the steps are strictly sequential where they depend
// on each other; the text evaluation call and the token scoring run
// concurrently because neither needs the other's output. Collaborator calls
// all happen before the session record is persisted, so a failing
// collaborator leaves no partial state behind.
package assess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vaanilabs/vaani/internal/aggregate"
	"github.com/vaanilabs/vaani/internal/align"
	"github.com/vaanilabs/vaani/internal/fluency"
	"github.com/vaanilabs/vaani/internal/lang"
	"github.com/vaanilabs/vaani/internal/milestone"
	"github.com/vaanilabs/vaani/internal/observe"
	"github.com/vaanilabs/vaani/internal/score"
	"github.com/vaanilabs/vaani/internal/tokenizer"
	"github.com/vaanilabs/vaani/pkg/provider/asr"
	"github.com/vaanilabs/vaani/pkg/provider/grader"
	"github.com/vaanilabs/vaani/pkg/provider/texteval"
	"github.com/vaanilabs/vaani/pkg/store"
	"github.com/vaanilabs/vaani/pkg/types"
)

// ErrEmptyResponse means the chosen transcription was empty: the learner's
// audio produced nothing usable. Client-correctable; never retried here.
var ErrEmptyResponse = errors.New("assess: empty response, check audio")

// ErrInvalidSubmission wraps structural input errors so the boundary can map
// them to a client error instead of a collaborator failure.
var ErrInvalidSubmission = errors.New("assess: invalid submission")

// Config groups the scoring constants one Service runs with.
type Config struct {
	Score           score.Config
	ConstructOpts   []align.ConstructOption
	FluencyWeights  fluency.Weights
	FluencyCeilings fluency.Ceilings
	Aggregate       aggregate.Config
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		Score:           score.DefaultConfig(),
		FluencyWeights:  fluency.DefaultWeights(),
		FluencyCeilings: fluency.DefaultCeilings(),
		Aggregate:       aggregate.DefaultConfig(),
	}
}

// Submission is one learner attempt arriving from the boundary layer.
type Submission struct {
	UserID       string
	SessionID    string
	SubSessionID string
	ContentID    string
	ContentType  types.ContentType
	Language     string

	// OriginalText is the text the learner was asked to read.
	OriginalText string

	// AudioBase64 is the learner's recording.
	AudioBase64 string

	Mode    types.Mode
	IsRetry bool

	// CollectionID identifies a fixed curriculum unit; empty in adaptive or
	// showcase mode.
	CollectionID string

	// Mechanics activates the comprehension mode for this submission.
	Mechanics bool

	// CorrectnessCount is the mechanics correct-answer aggregate supplied by
	// the client.
	CorrectnessCount int

	// SuppliedSyllables is the client-supplied syllable count, used only for
	// languages whose descriptor expects one.
	SuppliedSyllables int
}

// Validate rejects structurally invalid submissions before any collaborator
// is called.
func (s Submission) Validate() error {
	var errs []error
	if s.UserID == "" {
		errs = append(errs, errors.New("user id must not be empty"))
	}
	if s.SessionID == "" {
		errs = append(errs, errors.New("session id must not be empty"))
	}
	if s.SubSessionID == "" {
		errs = append(errs, errors.New("sub-session id must not be empty"))
	}
	if s.OriginalText == "" {
		errs = append(errs, errors.New("original text must not be empty"))
	}
	if s.AudioBase64 == "" {
		errs = append(errs, errors.New("audio must not be empty"))
	}
	if s.Language == "" {
		errs = append(errs, errors.New("language must not be empty"))
	}
	if !s.ContentType.IsValid() {
		errs = append(errs, fmt.Errorf("content type %q is invalid", s.ContentType))
	}
	if !s.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("mode %q is invalid", s.Mode))
	}
	return errors.Join(errs...)
}

// Result is the assessment of one submission, returned to the caller.
type Result struct {
	ResponseText  string `json:"responseText"`
	ConstructText string `json:"constructText"`

	ConfidenceScores   []types.TokenScore `json:"confidenceScores"`
	MissingTokenScores []types.TokenScore `json:"missingTokenScores"`
	AnomalyScores      []types.TokenScore `json:"anomalyScores"`

	FluencyScore float64 `json:"fluencyScore"`

	SubSessionTargetsCount int     `json:"subsessionTargetsCount"`
	SubSessionFluency      float64 `json:"subsessionFluency"`

	SessionResult     string `json:"sessionResult"`
	CurrentLevel      string `json:"currentLevel"`
	PreviousLevel     string `json:"previousLevel"`
	TotalSyllables    int    `json:"totalSyllables"`
	TargetsPercentage int    `json:"targetsPercentage"`
}

// Service runs the assessment pipeline. It is safe for concurrent use; the
// scoring constants can be swapped at runtime via [Service.Reload].
type Service struct {
	store     store.Store
	asr       asr.Provider
	texteval  texteval.Provider
	grader    grader.Provider
	registry  *lang.Registry
	milestone *milestone.Engine
	cfg       Config

	metrics *observe.Metrics
	now     func() time.Time

	mu     sync.RWMutex
	tables map[string]score.Table
}

// Option configures a [Service].
type Option func(*Service)

// WithMetrics attaches metric instruments. Without it, no metrics are
// recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithNow overrides the clock. Used in tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New wires a Service. The grader may be nil when no mechanics content is
// served; a mechanics submission without a grader still passes or fails on
// the correctness count alone.
func New(st store.Store, asrP asr.Provider, tevalP texteval.Provider, graderP grader.Provider,
	registry *lang.Registry, engine *milestone.Engine, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:     st,
		asr:       asrP,
		texteval:  tevalP,
		grader:    graderP,
		registry:  registry,
		milestone: engine,
		cfg:       cfg,
		now:       time.Now,
		tables:    make(map[string]score.Table),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the full pipeline for one submission.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	desc, err := s.registry.Get(lang.Code(sub.Language))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	cfg, engine := s.snapshot()

	ctx, span := observe.StartSpan(ctx, "assess.Submit")
	defer span.End()
	log := observe.Logger(ctx).With(
		"user_id", sub.UserID,
		"language", sub.Language,
		"content_type", string(sub.ContentType),
	)

	start := s.now()
	if s.metrics != nil {
		s.metrics.ActiveSubmissions.Add(ctx, 1)
		defer s.metrics.ActiveSubmissions.Add(ctx, -1)
	}

	// 1. Speech recognition.
	asrStart := s.now()
	asrRes, err := s.asr.Transcribe(ctx, asr.Request{
		AudioBase64: sub.AudioBase64,
		Language:    sub.Language,
		ContentType: sub.ContentType,
	})
	s.observeStage(ctx, "asr", asrStart, err)
	if err != nil {
		return nil, fmt.Errorf("assess: transcribe: %w", err)
	}

	// 2. Reconcile the two hypotheses against the original.
	choice := align.Reconcile(sub.OriginalText, asrRes.Denoised.Text(), asrRes.NonDenoised.Text())
	if choice.Text == "" {
		return nil, ErrEmptyResponse
	}
	log.Debug("hypothesis chosen",
		"denoised", choice.UseDenoised,
		"denoised_similarity", choice.DenoisedSimilarity,
		"non_denoised_similarity", choice.NonDenoisedSimilarity,
	)

	chosen := asrRes.NonDenoised
	if choice.UseDenoised {
		chosen = asrRes.Denoised
	}

	// 3. Construct text, tokenization and scoring run alongside the text
	// evaluation call; neither side needs the other.
	construct := align.BuildConstruct(sub.OriginalText, choice.Text, cfg.ConstructOpts...)

	var (
		metrics *texteval.Metrics
		scored  score.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teStart := s.now()
		m, err := s.texteval.Evaluate(gctx, texteval.Request{
			Reference:   sub.OriginalText,
			Hypothesis:  choice.Text,
			Language:    sub.Language,
			AudioBase64: sub.AudioBase64,
		})
		s.observeStage(gctx, "text_eval", teStart, err)
		if err != nil {
			return fmt.Errorf("evaluate text: %w", err)
		}
		metrics = m
		return nil
	})
	g.Go(func() error {
		table, err := s.hexcodeTable(gctx, sub.Language)
		if err != nil {
			return fmt.Errorf("hexcode table: %w", err)
		}
		signs := desc.SignSet()
		originalTokens := tokenizer.Tokenize(sub.OriginalText, signs, desc.Dialect)
		constructTokens := tokenizer.Tokenize(construct.Text, signs, desc.Dialect)
		alts := convertAlternatives(chosen.Alternatives())
		scorer := score.New(desc, cfg.Score)
		scored = scorer.Score(originalTokens, constructTokens, alts, table)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assess: %w", err)
	}

	// 4. Fluency.
	fluencyScore := fluency.Score(fluency.Metrics{
		WER:           metrics.WER,
		CER:           metrics.CER,
		Insertions:    len(metrics.Insertions),
		Deletions:     len(metrics.Deletions),
		Substitutions: len(metrics.Substitutions),
	}, construct.Repetitions, asrRes.PauseCount, sub.OriginalText, choice.Text, cfg.FluencyWeights)
	accuracy := fluency.Classify(fluencyScore, sub.ContentType, cfg.FluencyCeilings)

	// 5. Comprehension grading happens before anything is persisted so a
	// grader failure commits no partial state.
	var comprehension *float64
	if sub.Mechanics && s.grader != nil {
		grStart := s.now()
		gr, err := s.grader.Grade(ctx, grader.Request{
			Passage:    sub.OriginalText,
			Transcript: choice.Text,
			Language:   sub.Language,
		})
		s.observeStage(ctx, "grader", grStart, err)
		if err != nil {
			return nil, fmt.Errorf("assess: grade comprehension: %w", err)
		}
		comprehension = &gr.OverallScore
	}

	// 6. Persist the session record.
	rec := s.buildRecord(sub, choice.Text, construct, scored, metrics, asrRes, fluencyScore, accuracy)
	if err := s.store.AppendSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("assess: append session: %w", err)
	}

	// 7. Aggregate the sub-session and evaluate the milestone.
	records, err := s.store.ListBySubSession(ctx, sub.UserID, sub.SubSessionID)
	if err != nil {
		return nil, fmt.Errorf("assess: list sub-session: %w", err)
	}

	var filter aggregate.Filter
	if !desc.SuppliedSyllableCount {
		filter = aggregate.Syllables(s.subSessionTokens(records, desc))
	}
	agg := aggregate.Aggregate(records, aggregate.SummaryLatest, filter, cfg.Aggregate)
	subFluency := meanFluency(records)

	previous, err := s.previousLevel(ctx, sub.UserID, sub.Language)
	if err != nil {
		return nil, fmt.Errorf("assess: latest milestone: %w", err)
	}

	outcome, err := engine.Evaluate(milestone.Input{
		Language:           lang.Code(sub.Language),
		ContentType:        sub.ContentType,
		Previous:           previous,
		TotalTargets:       len(agg.Targets),
		FamiliarityCount:   len(agg.Familiarity),
		SuppliedSyllables:  sub.SuppliedSyllables,
		Fluency:            subFluency,
		Mechanics:          sub.Mechanics,
		ComprehensionScore: comprehension,
		CorrectnessCount:   sub.CorrectnessCount,
		CollectionID:       sub.CollectionID,
		Records:            records,
	})
	if err != nil {
		return nil, fmt.Errorf("assess: evaluate milestone: %w", err)
	}

	if outcome.WriteRecord {
		if err := s.store.AppendMilestone(ctx, &types.MilestoneRecord{
			UserID:       sub.UserID,
			SessionID:    sub.SessionID,
			SubSessionID: sub.SubSessionID,
			Language:     sub.Language,
			Level:        outcome.Current.String(),
			CreatedAt:    s.now().UTC(),
		}); err != nil {
			return nil, fmt.Errorf("assess: append milestone: %w", err)
		}
		if s.metrics != nil && outcome.Current != outcome.Previous {
			s.metrics.RecordMilestoneTransition(ctx, sub.Language, direction(outcome.Previous, outcome.Current))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSubmission(ctx, sub.Language, string(sub.ContentType), string(outcome.Result))
		s.metrics.SubmissionDuration.Record(ctx, s.now().Sub(start).Seconds())
	}
	log.Info("submission assessed",
		"result", string(outcome.Result),
		"previous_level", outcome.Previous.String(),
		"current_level", outcome.Current.String(),
		"fluency", fluencyScore,
		"targets_percentage", outcome.TargetsPercentage,
	)

	return &Result{
		ResponseText:           choice.Text,
		ConstructText:          construct.Text,
		ConfidenceScores:       scored.Confidence,
		MissingTokenScores:     scored.Missing,
		AnomalyScores:          scored.Anomaly,
		FluencyScore:           fluencyScore,
		SubSessionTargetsCount: len(agg.Targets),
		SubSessionFluency:      subFluency,
		SessionResult:          string(outcome.Result),
		CurrentLevel:           outcome.Current.String(),
		PreviousLevel:          outcome.Previous.String(),
		TotalSyllables:         outcome.TotalSyllables,
		TargetsPercentage:      outcome.TargetsPercentage,
	}, nil
}

// Trends returns the user-wide targets/familiarity view for one language,
// aggregated with the mean summary over the trailing window.
func (s *Service) Trends(ctx context.Context, userID, language string, limit int) (aggregate.Result, error) {
	records, err := s.store.ListByUser(ctx, userID, language, limit)
	if err != nil {
		return aggregate.Result{}, fmt.Errorf("assess: list sessions: %w", err)
	}
	cfg, _ := s.snapshot()
	return aggregate.Aggregate(records, aggregate.SummaryMean, nil, cfg.Aggregate), nil
}

// Reload swaps the scoring constants and, when engine is non-nil, the
// milestone engine. In-flight submissions keep the set they started with.
func (s *Service) Reload(cfg Config, engine *milestone.Engine) {
	s.mu.Lock()
	s.cfg = cfg
	if engine != nil {
		s.milestone = engine
	}
	s.mu.Unlock()
}

func (s *Service) snapshot() (Config, *milestone.Engine) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.milestone
}

// buildRecord assembles the immutable session record for one attempt.
func (s *Service) buildRecord(sub Submission, responseText string, construct align.Construct,
	scored score.Result, metrics *texteval.Metrics, asrRes *asr.Result,
	fluencyScore float64, accuracy fluency.Label) *types.SessionRecord {

	prosody := asrRes.Prosody
	if prosody != nil {
		// The acoustic backend classifies pitch, intensity, expression and
		// smoothness; rate and accuracy come from the text side.
		p := *prosody
		if p.TempoClassification == "" {
			p.TempoClassification = metrics.TempoClassification
		}
		p.RateClassification = metrics.RateClassification
		p.AccuracyClassification = string(accuracy)
		p.WordsPerMinute = metrics.WordsPerMinute
		prosody = &p
	}

	return &types.SessionRecord{
		ID:           uuid.NewString(),
		UserID:       sub.UserID,
		SessionID:    sub.SessionID,
		SubSessionID: sub.SubSessionID,
		ContentID:    sub.ContentID,
		ContentType:  sub.ContentType,
		Language:     sub.Language,

		OriginalText:  sub.OriginalText,
		ResponseText:  responseText,
		ConstructText: construct.Text,

		ConfidenceScores:   scored.Confidence,
		MissingTokenScores: scored.Missing,
		AnomalyScores:      scored.Anomaly,

		ErrorRate: types.ErrorRate{Character: metrics.CER, Word: metrics.WER},
		CountDiff: types.CountDiff{
			Character: absInt(runeCount(sub.OriginalText) - runeCount(responseText)),
			Word:      absInt(wordCount(sub.OriginalText) - wordCount(responseText)),
		},
		EditDistance: types.EditDistance{
			Insertions:    types.EditOps{Chars: metrics.Insertions, Count: len(metrics.Insertions)},
			Deletions:     types.EditOps{Chars: metrics.Deletions, Count: len(metrics.Deletions)},
			Substitutions: types.EditOps{Chars: metrics.Substitutions, Count: len(metrics.Substitutions)},
		},

		FluencyScore: fluencyScore,
		SilencePause: types.SilencePause{
			TotalDuration: asrRes.AvgPause * float64(asrRes.PauseCount),
			Count:         asrRes.PauseCount,
		},
		RepetitionCount: construct.Repetitions,

		Prosody: prosody,

		IsRetry:   sub.IsRetry,
		Mode:      sub.Mode,
		CreatedAt: s.now().UTC(),
	}
}

// hexcodeTable returns the cached lookup table for language, loading it from
// the store on first use.
func (s *Service) hexcodeTable(ctx context.Context, language string) (score.Table, error) {
	s.mu.RLock()
	t, ok := s.tables[language]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	entries, err := s.store.Hexcodes(ctx, language)
	if err != nil {
		return nil, err
	}
	t = score.NewTable(entries)

	s.mu.Lock()
	s.tables[language] = t
	s.mu.Unlock()
	return t, nil
}

// subSessionTokens tokenizes every record's original text, deduplicated in
// first-appearance order. The milestone targets filter is scoped to these.
func (s *Service) subSessionTokens(records []*types.SessionRecord, desc lang.Descriptor) []string {
	signs := desc.SignSet()
	seen := make(map[string]struct{})
	var tokens []string
	for _, rec := range records {
		for _, t := range tokenizer.Tokenize(rec.OriginalText, signs, desc.Dialect) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// previousLevel resolves the user's current milestone; no record means m0.
func (s *Service) previousLevel(ctx context.Context, userID, language string) (milestone.Level, error) {
	rec, err := s.store.LatestMilestone(ctx, userID, language)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return milestone.ParseLevel(rec.Level)
}

// observeStage records the latency and outcome of one collaborator call.
func (s *Service) observeStage(ctx context.Context, kind string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	d := s.now().Sub(start).Seconds()
	switch kind {
	case "asr":
		s.metrics.ASRDuration.Record(ctx, d)
	case "text_eval":
		s.metrics.TextEvalDuration.Record(ctx, d)
	case "grader":
		s.metrics.GradingDuration.Record(ctx, d)
	}
	status := "ok"
	if err != nil {
		status = "error"
		s.metrics.RecordProviderError(ctx, kind, kind)
	}
	s.metrics.RecordProviderRequest(ctx, kind, kind, status)
}

func convertAlternatives(in []asr.Alternative) []score.Alternative {
	out := make([]score.Alternative, len(in))
	for i, a := range in {
		out[i] = score.Alternative{Subtoken: a.Subtoken, Probability: a.Probability}
	}
	return out
}

// meanFluency averages the fluency scores across the sub-session's records.
func meanFluency(records []*types.SessionRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.FluencyScore
	}
	return sum / float64(len(records))
}

func runeCount(s string) int { return utf8.RuneCountInString(s) }

func wordCount(s string) int { return len(strings.Fields(s)) }

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// direction labels a milestone transition for metrics.
func direction(prev, cur milestone.Level) string {
	switch {
	case cur > prev:
		return "up"
	case cur < prev:
		return "down"
	default:
		return "hold"
	}
}
