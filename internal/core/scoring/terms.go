package scoring

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

// Stop words excluded from term matching. Short connectives plus "vs"
// and "x", which show up constantly in versus-style trend titles.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "vs": true, "x": true,
}

var termFolder = cases.Fold()

// significantTerms extracts the normalized term set used for fuzzy
// cross-platform matching: case-folded, whitespace-split, stop words and
// words shorter than three runes dropped.
func significantTerms(item *domain.TrendItem) map[string]bool {
	text := item.Name
	if text == "" {
		text = item.Title
	}

	if text == "" {
		text = item.ID
	}

	terms := make(map[string]bool)

	for _, word := range strings.Fields(termFolder.String(text)) {
		if utf8.RuneCountInString(word) < minTermRunes || stopWords[word] {
			continue
		}

		terms[word] = true
	}

	return terms
}

// jaccardSimilarity returns |intersection| / |union| for two term sets.
func jaccardSimilarity(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 || len(set2) == 0 {
		return 0
	}

	intersection := 0

	for term := range set1 {
		if set2[term] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// termsOverlap reports whether two term sets are similar enough to be
// treated as the same trend on different platforms.
func termsOverlap(set1, set2 map[string]bool) bool {
	return jaccardSimilarity(set1, set2) >= termOverlapThreshold
}
