package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Chunking defaults: documents exceeding a configured size limit are
// chunked into overlapping windows.
const (
	DefaultChunkWindow = 2000 // runes
	DefaultChunkStride = 1500 // runes; overlap = window - stride
	DefaultMaxDocSize  = 2000 // documents at or below this size are not chunked
)

// ScoredDocument is one ranked search result.
type ScoredDocument struct {
	DocID   string
	Path    string
	Score   float64
	Snippet string
	ModTime time.Time
}

// Config tunes the Knowledge Store's chunking behavior.
type Config struct {
	ChunkWindow int
	ChunkStride int
	MaxDocSize  int
}

// DefaultConfig returns the standard chunking defaults.
func DefaultConfig() Config {
	return Config{
		ChunkWindow: DefaultChunkWindow,
		ChunkStride: DefaultChunkStride,
		MaxDocSize:  DefaultMaxDocSize,
	}
}

// Corpus is the in-memory, read-only-after-load collection of Documents
// plus the shared vocabulary (idf model) they were vectorized against.
// Exclusively owned by the Knowledge Store.
type Corpus struct {
	mu        sync.RWMutex
	docs      []*Document
	idf       *idfModel
	sanitizer *bluemonday.Policy
	cfg       Config
	logger    *zap.Logger
}

// NewCorpus builds an empty corpus; call Load or Rebuild to populate it.
func NewCorpus(cfg Config, logger *zap.Logger) *Corpus {
	return &Corpus{
		cfg:       cfg,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
	}
}

// Load scans dir for markdown files (*.md, *.markdown) and rebuilds the
// corpus. An empty or missing directory yields an empty corpus rather than
// an error; an empty corpus simply yields empty search results. Duplicate
// relative paths within dir are rejected.
func (c *Corpus) Load(dir string) error {
	entries, err := collectMarkdownFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			c.docs = nil
			c.idf = fitIDF(nil)
			c.mu.Unlock()
			return nil
		}
		return fmt.Errorf("scan knowledge dir: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	var rawDocs []*Document
	for _, path := range entries {
		rel, _ := filepath.Rel(dir, path)
		if seen[rel] {
			return fmt.Errorf("duplicate knowledge file path: %s", rel)
		}
		seen[rel] = true

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		info, _ := os.Stat(path)

		raw := string(data)
		chunks := splitIntoChunks(raw, c.cfg)
		for i, chunk := range chunks {
			doc := &Document{
				ID:          fmt.Sprintf("%s#%d", rel, i),
				Path:        rel,
				Raw:         chunk.text,
				Tokens:      tokenize(chunk.text),
				Sections:    segmentSections(chunk.text),
				ChunkIndex:  i,
				ChunkOffset: chunk.offset,
			}
			if info != nil {
				doc.ModTime = info.ModTime()
			}
			rawDocs = append(rawDocs, doc)
		}
	}

	allTokens := make([][]string, len(rawDocs))
	for i, d := range rawDocs {
		allTokens[i] = d.Tokens
	}
	idf := fitIDF(allTokens)
	for _, d := range rawDocs {
		d.Vector = idf.vectorize(d.Tokens)
	}

	c.mu.Lock()
	c.docs = rawDocs
	c.idf = idf
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("knowledge corpus loaded",
			zap.Int("documents", len(rawDocs)),
			zap.String("dir", dir))
	}
	return nil
}

// Empty reports whether the corpus currently has zero documents.
func (c *Corpus) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs) == 0
}

// Size returns the current document (chunk) count.
func (c *Corpus) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Search returns the top-k documents by cosine similarity to query. Returns
// an empty (not nil-panicking) slice when the corpus is empty.
func (c *Corpus) Search(query string, k int) []ScoredDocument {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.docs) == 0 || k <= 0 {
		return nil
	}

	qVec := c.idf.vectorize(tokenize(query))
	scored := make([]ScoredDocument, 0, len(c.docs))
	for _, d := range c.docs {
		score := cosineSimilarity(qVec, d.Vector)
		if score <= 0 {
			continue
		}
		scored = append(scored, ScoredDocument{
			DocID:   d.ID,
			Path:    d.Path,
			Score:   score,
			Snippet: c.bestSnippet(d, qVec),
			ModTime: d.ModTime,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].DocID < scored[j].DocID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// VectorOf returns the tf-idf vector for an ad-hoc piece of text in the
// corpus's current feature space. Used by Context7's clustering stage to
// compare candidates drawn from different sources on one shared axis.
func (c *Corpus) VectorOf(text string) map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.idf == nil {
		return nil
	}
	return c.idf.vectorize(tokenize(text))
}

// bestSnippet picks the highest-scoring section of d against qVec, falling
// back to a leading excerpt when no sections were found, then sanitizes any
// embedded HTML before it is allowed to leave the store.
func (c *Corpus) bestSnippet(d *Document, qVec map[string]float64) string {
	const maxLen = 320
	text := d.Raw
	if len(d.Sections) > 0 {
		bestScore := -1.0
		bestText := ""
		for _, s := range d.Sections {
			if s.Start >= len(d.Raw) || s.End > len(d.Raw) || s.Start >= s.End {
				continue
			}
			section := d.Raw[s.Start:s.End]
			score := cosineSimilarity(qVec, c.idf.vectorize(tokenize(section)))
			if score > bestScore {
				bestScore = score
				bestText = section
			}
		}
		if bestText != "" {
			text = bestText
		}
	}
	text = strings.TrimSpace(text)
	if len(text) > maxLen {
		text = text[:maxLen] + "…"
	}
	return c.sanitizer.Sanitize(text)
}

func collectMarkdownFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".markdown" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
