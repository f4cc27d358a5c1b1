package command

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SuggestThreshold is the similarity a candidate must exceed to be offered as
// a "did you mean" suggestion.
const SuggestThreshold = 80

// NameMatcher scores known names against an unknown query. Only whether the
// best score clears SuggestThreshold matters to callers.
type NameMatcher interface {
	// Best returns the closest candidate and its similarity in [0, 100].
	// It returns "", 0 when candidates is empty.
	Best(query string, candidates []string) (string, int)
}

// LevenshteinMatcher scores by case-insensitive edit distance normalized to
// the longer string's length.
type LevenshteinMatcher struct{}

// Best implements NameMatcher. Ties keep the earliest candidate.
func (LevenshteinMatcher) Best(query string, candidates []string) (string, int) {
	best, bestScore := "", 0
	q := strings.ToLower(strings.TrimSpace(query))
	for _, c := range candidates {
		score := Similarity(q, strings.ToLower(c))
		if best == "" || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

// Similarity returns 100 for identical strings and 0 for strings sharing
// nothing, scaled by edit distance.
func Similarity(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(longest))))
}
