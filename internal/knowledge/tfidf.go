package knowledge

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9']+`)

// tokenize lower-cases and splits on non-alphanumeric runs. No stemming —
// the corpus is small markdown knowledge bases, not a full-text search
// engine, so a simple bag-of-words is sufficient.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return tokenPattern.FindAllString(lower, -1)
}

// termFrequency returns raw counts for tokens.
func termFrequency(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// idfModel holds the inverse-document-frequency weights fit across a
// Corpus. Rebuilding a Corpus produces a new idfModel and invalidates every
// Document's vector atomically.
type idfModel struct {
	idf   map[string]float64
	nDocs int
}

func fitIDF(allTokens [][]string) *idfModel {
	df := make(map[string]int)
	for _, tokens := range allTokens {
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	n := len(allTokens)
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		// smoothed idf, never negative or zero even when a term appears in
		// every document.
		idf[term] = math.Log(float64(1+n)/float64(1+count)) + 1
	}
	return &idfModel{idf: idf, nDocs: n}
}

// vectorize produces a unit-normalized tf-idf vector for one document's
// tokens against the fitted idfModel.
func (m *idfModel) vectorize(tokens []string) map[string]float64 {
	tf := termFrequency(tokens)
	vec := make(map[string]float64, len(tf))
	var sumSquares float64
	for term, count := range tf {
		w := count * m.idf[term]
		vec[term] = w
		sumSquares += w * w
	}
	if sumSquares == 0 {
		return vec
	}
	norm := math.Sqrt(sumSquares)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// cosineSimilarity assumes both vectors are already unit-normalized, so the
// similarity is a plain dot product over the smaller map's keys.
func cosineSimilarity(a, b map[string]float64) float64 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var dot float64
	for term, w := range small {
		dot += w * large[term]
	}
	return dot
}
