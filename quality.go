package watsonx

import "strings"

var (
	commonWords     = []string{"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by"}
	errorIndicators = []string{"error", "failed", "invalid", "unknown", "not found"}
)

// AssessQuality scores generated text in [0, 1] using cheap surface checks:
// length, presence of common words, absence of error phrases, sentence
// structure and word count. It is a triage signal, not a judgment of
// correctness.
func AssessQuality(text string) float64 {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(text)
	var score float64

	if n := len(trimmed); n > 8 && n < 200 {
		score += 0.3
	}
	if containsAny(lower, commonWords) {
		score += 0.2
	}
	if !containsAny(lower, errorIndicators) {
		score += 0.2
	}
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			score += 0.15
			break
		}
	}
	if n := len(strings.Fields(text)); n > 3 && n < 100 {
		score += 0.15
	}
	return score
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
