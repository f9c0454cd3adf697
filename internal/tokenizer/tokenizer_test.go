package tokenizer_test

import (
	"strings"
	"testing"

	"github.com/vaanilabs/vaani/internal/lang"
	"github.com/vaanilabs/vaani/internal/tokenizer"
)

func tamilSigns(t *testing.T) map[rune]struct{} {
	t.Helper()
	d, err := lang.Default().Get(lang.Tamil)
	if err != nil {
		t.Fatalf("Get(ta): %v", err)
	}
	return d.SignSet()
}

func TestTokenize_ReplaceDialect(t *testing.T) {
	t.Parallel()

	signs := tamilSigns(t)

	// "பாடம்" = ப + ா, ட, ம + ் → three units in the replace dialect.
	got := tokenizer.Tokenize("பாடம்", signs, lang.DialectReplace)
	want := []string{"பா", "ட", "ம்"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize: got %d units %q, want %d %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenize_AppendDialect(t *testing.T) {
	t.Parallel()

	signs := tamilSigns(t)

	// The append dialect keeps the bare base character and adds the extended
	// unit as a new entry: ப, பா, ட, ம, ம்.
	got := tokenizer.Tokenize("பாடம்", signs, lang.DialectAppend)
	want := []string{"ப", "பா", "ட", "ம", "ம்"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize: got %d units %q, want %d %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenize_SkipsWhitespace(t *testing.T) {
	t.Parallel()

	signs := tamilSigns(t)

	a := tokenizer.Tokenize("பாடம்", signs, lang.DialectReplace)
	b := tokenizer.Tokenize("  பா டம்\t", signs, lang.DialectReplace)
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Errorf("whitespace should not affect units: %q vs %q", a, b)
	}
}

func TestTokenize_EnglishLetters(t *testing.T) {
	t.Parallel()

	got := tokenizer.Tokenize("cat", nil, lang.DialectReplace)
	want := []string{"c", "a", "t"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize(cat): got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenize_LeadingSignIsStandalone(t *testing.T) {
	t.Parallel()

	signs := tamilSigns(t)

	// A vowel sign with no preceding base character becomes its own unit
	// rather than panicking or being dropped.
	got := tokenizer.Tokenize("ாக", signs, lang.DialectReplace)
	if len(got) != 2 || got[0] != "ா" || got[1] != "க" {
		t.Errorf("Tokenize(leading sign) = %q, want [ா க]", got)
	}
	if !tokenizer.IsSignOnly(got[0], signs) {
		t.Errorf("IsSignOnly(%q) = false, want true", got[0])
	}
	if tokenizer.IsSignOnly(got[1], signs) {
		t.Errorf("IsSignOnly(%q) = true, want false", got[1])
	}
}

func TestTokenize_ReplaceDialectIdempotent(t *testing.T) {
	t.Parallel()

	signs := tamilSigns(t)

	first := tokenizer.Tokenize("பாடம் நல்லது", signs, lang.DialectReplace)
	second := tokenizer.Tokenize(strings.Join(first, ""), signs, lang.DialectReplace)
	if len(first) != len(second) {
		t.Fatalf("re-tokenizing joined output changed unit count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("unit[%d]: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestTokenize_Empty(t *testing.T) {
	t.Parallel()

	if got := tokenizer.Tokenize("", nil, lang.DialectReplace); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %q, want empty", got)
	}
	if got := tokenizer.Tokenize("   ", nil, lang.DialectReplace); len(got) != 0 {
		t.Errorf("Tokenize(spaces) = %q, want empty", got)
	}
}
