package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the provider implementations the server can
// construct out of the box, per provider kind. Additional names become valid
// when registered on the [Registry] at startup; Validate only checks against
// this table when the kind has an entry here.
var ValidProviderNames = map[string][]string{
	"asr":       {"batch", "stream", "mock"},
	"text_eval": {"rest", "mock"},
	"grader": {
		"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral",
		"groq", "openai-native", "mock",
	},
}

// Load reads and validates the YAML configuration at path. Settings absent
// from the file keep the values from [Default].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes and validates YAML configuration from r.
// Unknown fields are rejected so typos fail loudly at startup.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty file decodes to EOF; validation below still demands the
		// provider and store settings a running server cannot default.
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for structural problems. All problems
// found are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr must not be empty"))
	}
	if !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", c.Server.LogLevel))
	}
	if tls := c.Server.TLS; tls != nil {
		if tls.CertFile == "" || tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	if c.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn must not be empty"))
	}

	errs = append(errs, validateProviderEntry("asr", c.Providers.ASR)...)
	errs = append(errs, validateProviderEntry("text_eval", c.Providers.TextEval)...)
	errs = append(errs, validateProviderEntry("grader", c.Providers.Grader)...)

	s := c.Scoring
	if s.PairThreshold < 0 || s.PairThreshold > 1 {
		errs = append(errs, fmt.Errorf("scoring.pair_threshold %v must be in [0, 1]", s.PairThreshold))
	}
	if s.RepetitionThreshold < 0 || s.RepetitionThreshold > 1 {
		errs = append(errs, fmt.Errorf("scoring.repetition_threshold %v must be in [0, 1]", s.RepetitionThreshold))
	}
	if s.BandLow > s.BandHigh {
		errs = append(errs, fmt.Errorf("scoring.band_low %v must not exceed scoring.band_high %v", s.BandLow, s.BandHigh))
	}

	if len(c.Milestone.Bands) == 0 {
		errs = append(errs, errors.New("milestone.bands must not be empty"))
	}
	prev := 0
	for i, b := range c.Milestone.Bands {
		if b.MaxSyllables <= prev {
			errs = append(errs, fmt.Errorf("milestone.bands[%d].max_syllables %d must increase over the previous band", i, b.MaxSyllables))
		}
		prev = b.MaxSyllables
	}

	if c.Aggregate.Threshold <= 0 || c.Aggregate.Threshold > 1 {
		errs = append(errs, fmt.Errorf("aggregate.threshold %v must be in (0, 1]", c.Aggregate.Threshold))
	}
	if c.Aggregate.Window <= 0 {
		errs = append(errs, fmt.Errorf("aggregate.window %d must be positive", c.Aggregate.Window))
	}

	seen := make(map[string]bool, len(c.Languages))
	for i, lc := range c.Languages {
		if lc.Code == "" {
			errs = append(errs, fmt.Errorf("languages[%d].code must not be empty", i))
			continue
		}
		if seen[lc.Code] {
			errs = append(errs, fmt.Errorf("languages[%d]: duplicate code %q", i, lc.Code))
		}
		seen[lc.Code] = true
		if lc.MaxMilestone <= 0 {
			errs = append(errs, fmt.Errorf("languages[%d] (%s): max_milestone must be positive", i, lc.Code))
		}
	}

	return errors.Join(errs...)
}

func validateProviderEntry(kind string, p ProviderEntry) []error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("providers.%s.name must not be empty", kind))
		return errs
	}
	valid, ok := ValidProviderNames[kind]
	if !ok {
		return nil
	}
	for _, name := range valid {
		if p.Name == name {
			return nil
		}
	}
	errs = append(errs, fmt.Errorf("providers.%s.name %q is unknown; valid values: %v", kind, p.Name, valid))
	return errs
}
