package thinking

import (
	"regexp"
	"strings"
)

var conjunctionWords = []string{"and", "but", "or", "because", "although", "however", "therefore"}

var multiStepCues = []string{"compare", "then", "why", "first", "next", "after that", "versus"}

var domainKeywords = []string{
	"architecture", "algorithm", "database", "protocol", "security",
	"performance", "concurrency", "distributed", "api", "schema",
}

var wordPattern = regexp.MustCompile(`[A-Za-z']+`)

// ClassifyComplexity scores query on a weighted mix of features
// (length, conjunction count, multi-step cues, distinct noun-phrase proxy,
// domain keywords) and buckets the result into one of four bands.
func ClassifyComplexity(query string) Complexity {
	lower := strings.ToLower(query)
	words := wordPattern.FindAllString(lower, -1)

	score := 0.0
	score += float64(len(words)) * 0.08

	for _, w := range conjunctionWords {
		if containsWord(words, w) {
			score += 1.0
		}
	}
	for _, cue := range multiStepCues {
		if strings.Contains(lower, cue) {
			score += 1.5
		}
	}
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			score += 1.0
		}
	}
	score += float64(distinctCapitalizedOrLongWords(words)) * 0.5

	switch {
	case score < 3:
		return ComplexitySimple
	case score < 7:
		return ComplexityMedium
	case score < 12:
		return ComplexityHigh
	default:
		return ComplexityExpert
	}
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}

// distinctCapitalizedOrLongWords is a cheap proxy for "distinct noun
// phrases": words longer than 6 characters tend to be domain nouns rather
// than function words, without pulling in a full POS tagger dependency.
func distinctCapitalizedOrLongWords(words []string) int {
	seen := make(map[string]bool)
	for _, w := range words {
		if len(w) > 6 {
			seen[w] = true
		}
	}
	return len(seen)
}
