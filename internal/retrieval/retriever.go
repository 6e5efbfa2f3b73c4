// Package retrieval implements the baseline retriever: a thin, stateless
// wrapper over the knowledge store's cosine top-k search.
package retrieval

import (
	"time"

	"github.com/voidcat-ai/reasoning-core/internal/knowledge"
)

// Candidate is one retrieval result before Context7 enrichment.
type Candidate struct {
	SourceID string
	Snippet  string
	Base     float64
	ModTime  time.Time
}

// Retriever wraps a Corpus and exposes it as the baseline retrieval
// operation used directly by "basic" queries and as one Context7 source.
type Retriever struct {
	corpus *knowledge.Corpus
}

// New builds a Retriever over corpus.
func New(corpus *knowledge.Corpus) *Retriever {
	return &Retriever{corpus: corpus}
}

// Retrieve returns up to k candidates ranked by cosine similarity.
func (r *Retriever) Retrieve(query string, k int) []Candidate {
	docs := r.corpus.Search(query, k)
	out := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, Candidate{
			SourceID: d.DocID,
			Snippet:  d.Snippet,
			Base:     d.Score,
			ModTime:  d.ModTime,
		})
	}
	return out
}

// Empty reports whether the underlying corpus has no documents.
func (r *Retriever) Empty() bool {
	return r.corpus.Empty()
}
