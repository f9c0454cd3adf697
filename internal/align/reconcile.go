package align

// Choice is the outcome of reconciling the two ASR hypotheses against the
// original text.
type Choice struct {
	// UseDenoised is true when the denoised hypothesis was selected.
	UseDenoised bool

	// Text is the transcription of the selected hypothesis.
	Text string

	// Improved is true when denoising strictly improved similarity to the
	// original text.
	Improved bool

	// DenoisedSimilarity and NonDenoisedSimilarity are the similarity scores
	// that drove the choice, kept for logging and metrics.
	DenoisedSimilarity    float64
	NonDenoisedSimilarity float64
}

// Reconcile picks the better of the two hypotheses by similarity to the
// original text. Ties go to the non-denoised hypothesis.
//
// An empty Text on the returned choice means the ASR heard nothing usable;
// callers treat that as a terminal, client-correctable condition.
func Reconcile(original, denoised, nonDenoised string) Choice {
	simDen := Similarity(original, denoised)
	simNon := Similarity(original, nonDenoised)

	c := Choice{
		DenoisedSimilarity:    simDen,
		NonDenoisedSimilarity: simNon,
		Improved:              simDen > simNon,
	}
	if simDen <= simNon {
		c.UseDenoised = false
		c.Text = nonDenoised
	} else {
		c.UseDenoised = true
		c.Text = denoised
	}
	return c
}
