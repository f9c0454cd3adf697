package milestone

import "github.com/vaanilabs/vaani/internal/lang"

// Rule is one fixed-curriculum outcome. A nil level means no milestone
// record is written for that result.
type Rule struct {
	OnPass *Level `yaml:"on_pass"`
	OnFail *Level `yaml:"on_fail"`
}

// CurriculumTable maps opaque curriculum-unit collection ids to their fixed
// outcomes. Ids absent from the table fall through to the adaptive
// transition.
type CurriculumTable map[string]Rule

func lvl(n int) *Level {
	l := Level(n)
	return &l
}

// DefaultCurricula returns the per-language curriculum override tables. The
// id→outcome mappings are product data carried verbatim from the curriculum
// team; edit the configuration, not this code.
func DefaultCurricula() map[lang.Code]CurriculumTable {
	tamil := CurriculumTable{
		// Placement units reset the learner regardless of result.
		"ta-placement-entry": {OnPass: lvl(0), OnFail: lvl(0)},

		// Graduation gates out of the introductory track.
		"ta-grad-uyir":  {OnPass: lvl(2), OnFail: lvl(1)},
		"ta-grad-mei":   {OnPass: lvl(2), OnFail: lvl(1)},
		"ta-grad-combo": {OnPass: lvl(2), OnFail: lvl(1)},

		// Remedial checkpoints: demote on fail, leave no trace on pass.
		"ta-remedial-1": {OnPass: nil, OnFail: lvl(3)},
		"ta-remedial-2": {OnPass: nil, OnFail: lvl(3)},

		// Track anchors.
		"ta-anchor-advanced": {OnPass: lvl(4), OnFail: lvl(4)},
		"ta-anchor-basic":    {OnPass: lvl(1), OnFail: lvl(1)},
	}
	kannada := CurriculumTable{
		"kn-placement-entry": {OnPass: lvl(0), OnFail: lvl(0)},
		"kn-grad-swara":      {OnPass: lvl(2), OnFail: lvl(1)},
		"kn-grad-vyanjana":   {OnPass: lvl(2), OnFail: lvl(1)},
		"kn-remedial-1":      {OnPass: nil, OnFail: lvl(3)},
		"kn-anchor-advanced": {OnPass: lvl(4), OnFail: lvl(4)},
		"kn-anchor-basic":    {OnPass: lvl(1), OnFail: lvl(1)},
	}
	english := CurriculumTable{
		"en-placement-entry": {OnPass: lvl(0), OnFail: lvl(0)},
		"en-grad-phonics":    {OnPass: lvl(2), OnFail: lvl(1)},
		"en-remedial-1":      {OnPass: nil, OnFail: lvl(3)},
		"en-anchor-advanced": {OnPass: lvl(4), OnFail: lvl(4)},
		"en-anchor-basic":    {OnPass: lvl(1), OnFail: lvl(1)},
	}
	return map[lang.Code]CurriculumTable{
		lang.Tamil:   tamil,
		lang.Kannada: kannada,
		lang.English: english,
	}
}
