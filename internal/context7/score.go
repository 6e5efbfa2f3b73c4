package context7

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
)

// recencyHalfLife sets how quickly the recency bonus decays; a document
// modified within the last day scores near 1.0, one modified 30 days ago
// scores 0.5, and one modified 90 days ago scores 0.125.
const recencyHalfLife = 30 * 24 * time.Hour

// score computes final = base + α·intent + β·recency +
// γ·cluster. Cluster bonus is filled in by cluster() after this pass, so it
// starts at zero here.
func (e *Engine) score(cands []retrieval.Candidate, tags []intentTag) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		intentBonus := intentMatchStrength(c.Snippet, tags)
		recencyBonus := recencyScore(c.ModTime)

		out = append(out, Candidate{
			SourceID:     c.SourceID,
			Snippet:      c.Snippet,
			Base:         c.Base,
			IntentBonus:  intentBonus,
			RecencyBonus: recencyBonus,
			Final:        c.Base + e.weights.IntentBonus*intentBonus + e.weights.RecencyBonus*recencyBonus,
			ClusterID:    -1,
		})
	}
	return out
}

// intentMatchStrength is the fraction of detected intent tags whose
// keyphrases appear in snippet, a cheap proxy for "this candidate actually
// addresses the detected intent".
func intentMatchStrength(snippet string, tags []intentTag) float64 {
	if len(tags) == 0 {
		return 0
	}
	lower := strings.ToLower(snippet)
	matched := 0
	for _, tag := range tags {
		for _, kw := range intentExpansions[tag] {
			if strings.Contains(lower, kw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tags))
}

func recencyScore(modTime time.Time) float64 {
	if modTime.IsZero() {
		return 0
	}
	age := time.Since(modTime)
	if age < 0 {
		age = 0
	}
	// exponential decay: score = 0.5^(age/halfLife)
	halfLives := float64(age) / float64(recencyHalfLife)
	return math.Pow(2, -halfLives)
}

// cluster groups candidates by cosine similarity >= τ using single-link
// agglomerative merging over their tf-idf vectors, then
// back-fills each candidate's ClusterBonus/Coherence/Final.
func (e *Engine) cluster(cands []Candidate) [][]int {
	n := len(cands)
	if n == 0 {
		return nil
	}

	vecs := make([]map[string]float64, n)
	for i, c := range cands {
		vecs[i] = e.vectors.VectorOf(c.Snippet)
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if cosineSim(vecs[i], vecs[j]) >= e.weights.ClusterThresh {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := find(i)
		groups[r] = append(groups[r], i)
	}

	clusterIDs := make([]int, 0, len(groups))
	for r := range groups {
		clusterIDs = append(clusterIDs, r)
	}
	sort.Ints(clusterIDs)

	clusters := make([][]int, 0, len(clusterIDs))
	for id, r := range clusterIDs {
		members := groups[r]
		coherence := meanIntraSimilarity(members, vecs)
		for _, m := range members {
			cands[m].ClusterID = id
			cands[m].Coherence = coherence
			cands[m].ClusterBonus = coherence
			cands[m].Final += e.weights.ClusterBonus * coherence
		}
		clusters = append(clusters, members)
	}
	return clusters
}

func meanIntraSimilarity(members []int, vecs []map[string]float64) float64 {
	if len(members) <= 1 {
		return 1
	}
	var sum float64
	var count int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += cosineSim(vecs[members[i]], vecs[members[j]])
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return sum / float64(count)
}

func cosineSim(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for k, v := range small {
		dot += v * large[k]
	}
	return dot
}

// select_ picks candidates highest-final-score-first under the budget
// constraints. The trailing underscore is needed because "select" is a Go
// keyword and cannot be used as a method name.
func (e *Engine) select_(cands []Candidate, clusters [][]int) ([]Candidate, string) {
	ordered := make([]Candidate, len(cands))
	copy(ordered, cands)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Final != ordered[j].Final {
			return ordered[i].Final > ordered[j].Final
		}
		if ordered[i].Coherence != ordered[j].Coherence {
			return ordered[i].Coherence > ordered[j].Coherence
		}
		return ordered[i].SourceID < ordered[j].SourceID
	})

	perCluster := make(map[int]int)
	sources := make(map[string]bool)
	var selected []Candidate
	usedTokens := 0

	for _, c := range ordered {
		if perCluster[c.ClusterID] >= e.weights.MaxPerCluster {
			continue
		}
		cost := e.tokenCount(c.Snippet)
		if e.tokBudget > 0 && usedTokens+cost > e.tokBudget {
			continue
		}
		selected = append(selected, c)
		perCluster[c.ClusterID]++
		sources[c.SourceID] = true
		usedTokens += cost
	}

	reason := "ranked by final score under per-cluster and token-budget limits"
	if len(sources) < e.weights.MinSources && len(sources) < len(ordered) {
		reason = "fewer distinct sources available than the configured minimum"
	}
	return selected, reason
}

func (e *Engine) tokenCount(text string) int {
	if e.encoder == nil {
		return len(text) / 4
	}
	return len(e.encoder.Encode(text, nil, nil))
}

