package config

import "reflect"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// store changes require a restart and never appear here.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// ScoringChanged covers the alignment thresholds, token scoring
	// constants and fluency formula.
	ScoringChanged bool

	// MilestoneChanged covers bands, ceilings, gates and curricula.
	MilestoneChanged bool

	// AggregateChanged covers the targets/familiarity threshold and window.
	AggregateChanged bool

	// LanguagesChanged is true if any language override was added, removed,
	// or modified.
	LanguagesChanged bool
	LanguageChanges  []LanguageDiff
}

// LanguageDiff describes what changed for a single language override.
type LanguageDiff struct {
	Code     string
	Added    bool
	Removed  bool
	Modified bool
}

// Any reports whether the diff contains any change at all.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.ScoringChanged || d.MilestoneChanged ||
		d.AggregateChanged || d.LanguagesChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	// The scoring, milestone and aggregate blocks hold slices and maps, so a
	// deep comparison is the simplest correct check.
	if !reflect.DeepEqual(old.Scoring, new.Scoring) {
		d.ScoringChanged = true
	}
	if !reflect.DeepEqual(old.Milestone, new.Milestone) {
		d.MilestoneChanged = true
	}
	if old.Aggregate != new.Aggregate {
		d.AggregateChanged = true
	}

	oldLangs := make(map[string]*LanguageConfig, len(old.Languages))
	for i := range old.Languages {
		oldLangs[old.Languages[i].Code] = &old.Languages[i]
	}
	newLangs := make(map[string]*LanguageConfig, len(new.Languages))
	for i := range new.Languages {
		newLangs[new.Languages[i].Code] = &new.Languages[i]
	}

	for code, oldLC := range oldLangs {
		newLC, exists := newLangs[code]
		if !exists {
			d.LanguageChanges = append(d.LanguageChanges, LanguageDiff{Code: code, Removed: true})
			d.LanguagesChanged = true
			continue
		}
		if !reflect.DeepEqual(*oldLC, *newLC) {
			d.LanguageChanges = append(d.LanguageChanges, LanguageDiff{Code: code, Modified: true})
			d.LanguagesChanged = true
		}
	}
	for code := range newLangs {
		if _, exists := oldLangs[code]; !exists {
			d.LanguageChanges = append(d.LanguageChanges, LanguageDiff{Code: code, Added: true})
			d.LanguagesChanged = true
		}
	}

	return d
}
