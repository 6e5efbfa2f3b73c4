// Package context7 implements the Context7 Engine: a higher-quality
// context-bundle builder over the baseline retriever that combines lexical
// similarity, intent-matched query expansion, and cluster coherence into a
// base+bonus score before a token-budget-constrained selection pass.
package context7

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
)

// Weights are the scoring and clustering tunables, exposed so the RAG
// Coordinator's `configure` operation can override them at runtime.
type Weights struct {
	IntentBonus   float64 // α
	RecencyBonus  float64 // β
	ClusterBonus  float64 // γ
	ClusterThresh float64 // τ
	MaxPerCluster int     // N
	MinSources    int     // M
}

// DefaultWeights returns reasonable defaults for the scoring weights.
func DefaultWeights() Weights {
	return Weights{
		IntentBonus:   0.2,
		RecencyBonus:  0.05,
		ClusterBonus:  0.15,
		ClusterThresh: 0.75,
		MaxPerCluster: 2,
		MinSources:    3,
	}
}

// Candidate is one scored, cluster-assigned context entry.
type Candidate struct {
	SourceID    string
	Snippet     string
	Base        float64
	IntentBonus float64
	RecencyBonus float64
	ClusterBonus float64
	Final       float64
	ClusterID   int
	Coherence   float64
}

// Bundle is the final selection handed to the Sequential Thinking Engine.
type Bundle struct {
	Candidates []Candidate
	Empty      bool
	Analytics  Analytics
}

// Analytics records the per-candidate breakdown and selection reasoning.
type Analytics struct {
	Expansions      []string
	TotalCandidates int
	ClusterCount    int
	SelectionReason string
	SourcesFailed   []string
}

// vectorSource abstracts the Knowledge Store's feature space so clustering
// can compare candidates pulled from different queries on one shared axis.
type vectorSource interface {
	VectorOf(text string) map[string]float64
}

// Engine builds ContextBundles from a Baseline Retriever and a shared
// vector space.
type Engine struct {
	retriever  *retrieval.Retriever
	vectors    vectorSource
	weights    Weights
	tokBudget  int
	encoder    *tiktoken.Tiktoken
	logger     *zap.Logger
	quotaPerSource int
}

// New builds a Context7 Engine. tokenBudget bounds the total selected
// snippet size so the assembled context stays within a token budget.
func New(retriever *retrieval.Retriever, vectors vectorSource, weights Weights, tokenBudget int, logger *zap.Logger) *Engine {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &Engine{
		retriever:      retriever,
		vectors:        vectors,
		weights:        weights,
		tokBudget:      tokenBudget,
		encoder:        enc,
		logger:         logger,
		quotaPerSource: 8,
	}
}

// Build runs the full Context7 pipeline for query, optionally incorporating
// extra user-supplied context text as one more source.
func (e *Engine) Build(query string, userContext string) Bundle {
	tags, expansions := analyzeIntent(query)

	sources := append([]string{query}, expansions...)
	if strings.TrimSpace(userContext) != "" {
		sources = append(sources, userContext)
	}

	merged, failed := e.gather(sources)
	if len(merged) == 0 {
		return Bundle{
			Empty: true,
			Analytics: Analytics{
				Expansions:      expansions,
				SourcesFailed:   failed,
				SelectionReason: "all sources failed or returned no candidates",
			},
		}
	}

	scored := e.score(merged, tags)
	clusters := e.cluster(scored)
	selected, reason := e.select_(scored, clusters)

	return Bundle{
		Candidates: selected,
		Empty:      len(selected) == 0,
		Analytics: Analytics{
			Expansions:      expansions,
			TotalCandidates: len(scored),
			ClusterCount:    len(clusters),
			SelectionReason: reason,
			SourcesFailed:   failed,
		},
	}
}

// gather calls the retriever once per source with a per-source quota and
// deduplicates by exact snippet text.
func (e *Engine) gather(sources []string) ([]retrieval.Candidate, []string) {
	if e.retriever.Empty() {
		return nil, []string{"corpus empty"}
	}

	seen := make(map[string]bool)
	var merged []retrieval.Candidate
	var failed []string
	for _, s := range sources {
		if strings.TrimSpace(s) == "" {
			continue
		}
		cands := e.safeRetrieve(s, &failed)
		for _, c := range cands {
			key := c.SourceID + "|" + c.Snippet
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}
	return merged, failed
}

func (e *Engine) safeRetrieve(query string, failed *[]string) []retrieval.Candidate {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Warn("context7 source panicked, skipped", zap.Any("recover", r))
			}
			*failed = append(*failed, query)
		}
	}()
	return e.retriever.Retrieve(query, e.quotaPerSource)
}
