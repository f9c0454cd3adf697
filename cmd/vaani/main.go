// Command vaani is the oral-reading assessment server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/vaanilabs/vaani/internal/assess"
	"github.com/vaanilabs/vaani/internal/config"
	"github.com/vaanilabs/vaani/internal/health"
	"github.com/vaanilabs/vaani/internal/lang"
	"github.com/vaanilabs/vaani/internal/milestone"
	"github.com/vaanilabs/vaani/internal/observe"
	"github.com/vaanilabs/vaani/internal/resilience"
	"github.com/vaanilabs/vaani/pkg/provider/asr"
	asrbatch "github.com/vaanilabs/vaani/pkg/provider/asr/batch"
	asrmock "github.com/vaanilabs/vaani/pkg/provider/asr/mock"
	asrstream "github.com/vaanilabs/vaani/pkg/provider/asr/stream"
	"github.com/vaanilabs/vaani/pkg/provider/grader"
	graderanyllm "github.com/vaanilabs/vaani/pkg/provider/grader/anyllm"
	gradermock "github.com/vaanilabs/vaani/pkg/provider/grader/mock"
	graderopenai "github.com/vaanilabs/vaani/pkg/provider/grader/openai"
	"github.com/vaanilabs/vaani/pkg/provider/texteval"
	textevalmock "github.com/vaanilabs/vaani/pkg/provider/texteval/mock"
	textevalrest "github.com/vaanilabs/vaani/pkg/provider/texteval/rest"
	"github.com/vaanilabs/vaani/pkg/store/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "vaani: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "vaani: %v\n", err)
		}
		return 1
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("vaani starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry before anything that records metrics.
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	st, err := postgres.NewStore(ctx, cfg.Store.PostgresDSN)
	if err != nil {
		slog.Error("failed to connect to postgres", "err", err)
		return 1
	}
	defer st.Close()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	langs, err := cfg.LanguageRegistry()
	if err != nil {
		slog.Error("invalid language configuration", "err", err)
		return 1
	}

	svc := assess.New(
		st,
		providers.ASR,
		providers.TextEval,
		providers.Grader,
		langs,
		milestone.New(langs, cfg.Milestone),
		assessConfig(cfg),
		assess.WithMetrics(metrics),
	)

	// Hot reload: scoring constants, curriculum tables and the log level
	// follow the config file; provider and store changes need a restart.
	watcher, err := config.NewWatcher(*configPath, func(old, updated *config.Config) {
		applyReload(svc, langs, levelVar, old, updated)
	})
	if err != nil {
		slog.Error("failed to start config watcher", "err", err)
		return 1
	}
	defer watcher.Stop()

	healthHandler := health.New(health.Database(st))

	printStartupSummary(cfg, langs.Codes())

	srv := newServer(cfg.Server, svc, healthHandler, metrics)
	errCh := make(chan error, 1)
	go func() { errCh <- listen(srv, cfg.Server.TLS) }()

	slog.Info("server ready — press Ctrl+C to shut down")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve error", "err", err)
			return 1
		}
	}

	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func listen(srv *http.Server, tls *config.TLSConfig) error {
	if tls != nil {
		return srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
	}
	return srv.ListenAndServe()
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── ASR ───────────────────────────────────────────────────────────────────

	reg.RegisterASR("batch", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []asrbatch.Option
		if d := optDuration(entry.Options, "timeout"); d > 0 {
			opts = append(opts, asrbatch.WithTimeout(d))
		}
		return asrbatch.New(entry.BaseURL, opts...)
	})

	reg.RegisterASR("stream", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []asrstream.Option
		if n := optInt(entry.Options, "chunk_size"); n > 0 {
			opts = append(opts, asrstream.WithChunkSize(n))
		}
		if d := optDuration(entry.Options, "read_timeout"); d > 0 {
			opts = append(opts, asrstream.WithReadTimeout(d))
		}
		return asrstream.New(entry.BaseURL, opts...)
	})

	reg.RegisterASR("mock", func(config.ProviderEntry) (asr.Provider, error) {
		return &asrmock.Provider{}, nil
	})

	// ── Text evaluation ───────────────────────────────────────────────────────

	reg.RegisterTextEval("rest", func(entry config.ProviderEntry) (texteval.Provider, error) {
		var opts []textevalrest.Option
		if d := optDuration(entry.Options, "timeout"); d > 0 {
			opts = append(opts, textevalrest.WithTimeout(d))
		}
		return textevalrest.New(entry.BaseURL, opts...)
	})

	reg.RegisterTextEval("mock", func(config.ProviderEntry) (texteval.Provider, error) {
		return &textevalmock.Provider{}, nil
	})

	// ── Comprehension grader ──────────────────────────────────────────────────
	// The any-llm backends share one pattern: optional APIKey + BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini", "deepseek", "mistral", "groq",
	} {
		reg.RegisterGrader(providerName, func(entry config.ProviderEntry) (grader.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return graderanyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterGrader("ollama", func(entry config.ProviderEntry) (grader.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return graderanyllm.New("ollama", entry.Model, opts...)
	})

	// openai-native uses the official SDK's structured outputs instead of the
	// any-llm text path.
	reg.RegisterGrader("openai-native", func(entry config.ProviderEntry) (grader.Provider, error) {
		var opts []graderopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, graderopenai.WithBaseURL(entry.BaseURL))
		}
		if d := optDuration(entry.Options, "timeout"); d > 0 {
			opts = append(opts, graderopenai.WithTimeout(d))
		}
		return graderopenai.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterGrader("mock", func(config.ProviderEntry) (grader.Provider, error) {
		return &gradermock.Provider{}, nil
	})
}

// providerSet holds the instantiated collaborators, each wrapped in a
// circuit-breaking fallback group.
type providerSet struct {
	ASR      asr.Provider
	TextEval texteval.Provider
	Grader   grader.Provider
}

func buildProviders(cfg *config.Config, reg *config.Registry) (*providerSet, error) {
	fbCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
		},
	}

	asrP, err := reg.CreateASR(cfg.Providers.ASR)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "asr", "name", cfg.Providers.ASR.Name)

	tevalP, err := reg.CreateTextEval(cfg.Providers.TextEval)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "text_eval", "name", cfg.Providers.TextEval.Name)

	graderP, err := reg.CreateGrader(cfg.Providers.Grader)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "grader", "name", cfg.Providers.Grader.Name)

	return &providerSet{
		ASR:      resilience.NewASRFallback(asrP, cfg.Providers.ASR.Name, fbCfg),
		TextEval: resilience.NewTextEvalFallback(tevalP, cfg.Providers.TextEval.Name, fbCfg),
		Grader:   resilience.NewGraderFallback(graderP, cfg.Providers.Grader.Name, fbCfg),
	}, nil
}

// ── Hot reload ────────────────────────────────────────────────────────────────

func assessConfig(cfg *config.Config) assess.Config {
	return assess.Config{
		Score:           cfg.Scoring.TokenConfig(),
		ConstructOpts:   cfg.Scoring.ConstructOptions(),
		FluencyWeights:  cfg.Scoring.FluencyWeights,
		FluencyCeilings: cfg.Scoring.CeilingTable(),
		Aggregate:       cfg.Aggregate,
	}
}

// applyReload pushes a changed config file into the running server. The
// language registry is updated in place so descriptors reach the assessment
// pipeline without reconstructing it.
func applyReload(svc *assess.Service, langs *lang.Registry, levelVar *slog.LevelVar, old, updated *config.Config) {
	diff := config.Diff(old, updated)
	if !diff.Any() {
		return
	}
	slog.Info("config file changed, applying reload")

	if diff.LogLevelChanged {
		levelVar.Set(slogLevel(diff.NewLogLevel))
		slog.Info("log level changed", "level", diff.NewLogLevel)
	}

	if diff.LanguagesChanged {
		fresh, err := updated.LanguageRegistry()
		if err != nil {
			slog.Error("reload rejected: invalid language configuration", "err", err)
			return
		}
		// Removed languages stay registered until restart; in-flight
		// sub-sessions may still reference them.
		for _, code := range fresh.Codes() {
			d, err := fresh.Get(code)
			if err != nil {
				continue
			}
			if err := langs.Register(d); err != nil {
				slog.Error("reload: register language", "code", code, "err", err)
			}
		}
		slog.Info("language descriptors reloaded", "count", len(fresh.Codes()))
	}

	if diff.ScoringChanged || diff.MilestoneChanged || diff.AggregateChanged {
		var engine *milestone.Engine
		if diff.MilestoneChanged {
			engine = milestone.New(langs, updated.Milestone)
		}
		svc.Reload(assessConfig(updated), engine)
		slog.Info("scoring constants reloaded")
	}
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, codes []lang.Code) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          Vaani — startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("ASR", cfg.Providers.ASR.Name, cfg.Providers.ASR.Model)
	printProvider("Text eval", cfg.Providers.TextEval.Name, cfg.Providers.TextEval.Model)
	printProvider("Grader", cfg.Providers.Grader.Name, cfg.Providers.Grader.Model)
	langList := make([]string, len(codes))
	for i, c := range codes {
		langList[i] = string(c)
	}
	printRow("Languages", strings.Join(langList, " "))
	printRow("Listen addr", cfg.Server.ListenAddr)
	if cfg.Server.TLS != nil {
		printRow("TLS", "enabled")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	printRow(kind, value)
}

func printRow(label, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-15s : %-19s ║\n", label, value)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optInt extracts an integer from a provider Options map[string]any. YAML
// decodes numbers as int; anything else yields 0.
func optInt(opts map[string]any, key string) int {
	if opts == nil {
		return 0
	}
	if n, ok := opts[key].(int); ok {
		return n
	}
	return 0
}

// optDuration extracts a duration string ("5s", "1m") from a provider Options
// map. Unparseable or absent values yield 0.
func optDuration(opts map[string]any, key string) time.Duration {
	if opts == nil {
		return 0
	}
	s, ok := opts[key].(string)
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
