// Package rag implements the Enhanced RAG Coordinator: composes the
// Context7 Engine, baseline retriever, Sequential Thinking Engine, and LLM
// Gateway behind a fallback chain, plus a cached diagnostics snapshot. The
// coordinator composes storages and services; callers only ever talk to it,
// never to the components it wires directly.
package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/context7"
	"github.com/voidcat-ai/reasoning-core/internal/llm"
	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
	"github.com/voidcat-ai/reasoning-core/internal/thinking"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// Options holds the per-query toggles a caller can override.
type Options struct {
	Enhanced       bool
	MaxThoughts    int
	BranchCap      int
	ContextSources int
	IncludeTrace   bool
	TimeoutMS      int
	Model          string
}

// DefaultOptions enables the full pipeline with a 30s timeout.
func DefaultOptions() Options {
	return Options{Enhanced: true, TimeoutMS: 30000}
}

// Result is the coordinator's response to a `query` call.
type Result struct {
	Answer      string            `json:"answer"`
	Trace       *thinking.Session `json:"trace,omitempty"`
	Path        string            `json:"path"` // "enhanced", "basic", or "sequential_only"
	Timeout     bool              `json:"timeout"`
	Interrupted bool              `json:"interrupted"`
	Diagnostics Diagnostics       `json:"diagnostics"`
}

// Diagnostics is the cached health snapshot returned by `diagnostics()`, also
// embedded in each query Result with the two query-scoped fields
// (DegradedReason, ContextSourcesUsed) filled in for that call.
type Diagnostics struct {
	KnowledgeEmpty  bool      `json:"knowledge_empty"`
	LLMHealthy      bool      `json:"llm_healthy"`
	Context7Enabled bool      `json:"context7_enabled"`
	ThinkingEnabled bool      `json:"thinking_enabled"`
	LastUpdated     time.Time `json:"last_updated"`
	LastError       string    `json:"last_error,omitempty"`

	// DegradedReason explains why a query Result is a degraded success
	// rather than a full-pipeline answer: "knowledge_empty" (C4 skipped,
	// corpus empty), "basic_fallback" (enhanced path failed, basic path
	// answered instead), or "timeout" (deadline hit before completion).
	// Empty for a full-pipeline answer. Unset on the cached snapshot
	// returned by Diagnostics(); only query Results populate it.
	DegradedReason string `json:"degraded_reason,omitempty"`

	// ContextSourcesUsed is the number of context candidates fed into
	// reasoning for this query: 0 on the cached snapshot, set on every
	// query Result.
	ContextSourcesUsed int `json:"context_sources_used"`
}

// Coordinator wires the retriever, Context7 engine, and thinking engine
// behind a fallback chain: Context7 falls back to raw top-k retrieval,
// thinking falls back to a direct retrieve-then-answer path.
type Coordinator struct {
	gateway   *llm.Gateway
	retriever *retrieval.Retriever
	context7  *context7.Engine
	thinking  *thinking.Engine
	logger    *zap.Logger

	mu              sync.Mutex
	context7Enabled bool
	thinkingEnabled bool
	diagnostics     Diagnostics
	diagTicker      *time.Ticker
	stopDiagOnce    sync.Once
	stopDiagCh      chan struct{}
}

// New builds a Coordinator with both enhancement stages enabled by default.
func New(gateway *llm.Gateway, retriever *retrieval.Retriever, c7 *context7.Engine, th *thinking.Engine, logger *zap.Logger) *Coordinator {
	c := &Coordinator{
		gateway:         gateway,
		retriever:       retriever,
		context7:        c7,
		thinking:        th,
		logger:          logger,
		context7Enabled: true,
		thinkingEnabled: true,
		stopDiagCh:      make(chan struct{}),
	}
	c.refreshDiagnostics()
	return c
}

// StartDiagnosticsTimer refreshes the cached diagnostics snapshot on an
// interval until ctx is cancelled.
func (c *Coordinator) StartDiagnosticsTimer(ctx context.Context, interval time.Duration) {
	c.diagTicker = time.NewTicker(interval)
	go func() {
		defer c.diagTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopDiagCh:
				return
			case <-c.diagTicker.C:
				c.refreshDiagnostics()
			}
		}
	}()
}

// Stop halts the diagnostics timer goroutine, if running.
func (c *Coordinator) Stop() {
	c.stopDiagOnce.Do(func() { close(c.stopDiagCh) })
}

func (c *Coordinator) refreshDiagnostics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = Diagnostics{
		KnowledgeEmpty:  c.retriever.Empty(),
		LLMHealthy:      c.gateway != nil,
		Context7Enabled: c.context7Enabled,
		ThinkingEnabled: c.thinkingEnabled,
		LastUpdated:     time.Now(),
	}
}

// Diagnostics returns the cached health snapshot.
func (c *Coordinator) Diagnostics() Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diagnostics
}

// Configure toggles the Context7 and Sequential Thinking stages at runtime.
func (c *Coordinator) Configure(enableContext7, enableThinking *bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enableContext7 != nil {
		c.context7Enabled = *enableContext7
	}
	if enableThinking != nil {
		c.thinkingEnabled = *enableThinking
	}
}

// Query runs the full pipeline: Context7 assembles a context bundle
// (falling back to raw top-k retrieval on an empty bundle), then Sequential
// Thinking reasons over it; on a thinking failure it falls back to the
// plain retrieve-then-answer basic path; if that also fails, returns that
// path's error with a nil Result, so no diagnostics accompany the error.
func (c *Coordinator) Query(ctx context.Context, text string, opts Options) (*Result, error) {
	if opts.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	c.mu.Lock()
	useContext7 := c.context7Enabled && opts.Enhanced
	useThinking := c.thinkingEnabled && opts.Enhanced
	c.mu.Unlock()

	knowledgeEmpty := c.retriever.Empty()

	if !useContext7 && !useThinking {
		if knowledgeEmpty {
			return c.degradedAnswer(ctx, text, "knowledge_empty")
		}
		return c.queryBasic(ctx, text)
	}

	// Corpus is empty: C4 has nothing to index against, so it is never
	// called. bundle stays Empty and thinking synthesizes without context.
	bundle := context7.Bundle{Empty: true}
	if useContext7 && !knowledgeEmpty {
		bundle = c.context7.Build(text, "")
	}
	if bundle.Empty && !knowledgeEmpty {
		bundle = basicBundle(c.retriever, text, opts.ContextSources)
	}

	if useThinking {
		session, err := c.thinking.Run(ctx, text, bundle)
		if err == nil {
			timedOut := ctx.Err() == context.DeadlineExceeded
			diag := c.Diagnostics()
			diag.ContextSourcesUsed = len(bundle.Candidates)
			switch {
			case timedOut:
				diag.DegradedReason = "timeout"
			case knowledgeEmpty:
				diag.DegradedReason = "knowledge_empty"
			}
			result := &Result{
				Answer:      session.Answer,
				Path:        "enhanced",
				Interrupted: session.Interrupted,
				Timeout:     timedOut,
				Diagnostics: diag,
			}
			if opts.IncludeTrace {
				result.Trace = session
			}
			return result, nil
		}
		if c.logger != nil {
			c.logger.Warn("sequential thinking failed, falling back to basic path", zap.Error(err))
		}
	}

	if knowledgeEmpty {
		return c.degradedAnswer(ctx, text, "knowledge_empty")
	}

	basic, err := c.queryBasic(ctx, text)
	if err != nil {
		return nil, err
	}
	basic.Path = "basic"
	basic.Diagnostics.DegradedReason = "basic_fallback"
	return basic, nil
}

// QueryBasic is the retrieve-then-answer path with no enhancement stages.
func (c *Coordinator) QueryBasic(ctx context.Context, text string) (*Result, error) {
	return c.queryBasic(ctx, text)
}

func (c *Coordinator) queryBasic(ctx context.Context, text string) (*Result, error) {
	if c.retriever.Empty() {
		return nil, voiderr.New(voiderr.KnowledgeEmpty, "knowledge corpus is empty")
	}
	candidates := c.retriever.Retrieve(text, 5)

	var sb strings.Builder
	for _, cand := range candidates {
		sb.WriteString(cand.Snippet)
		sb.WriteString("\n")
	}

	messages := []llm.Message{
		{Role: "system", Content: "Answer the user's query using only the provided context."},
		{Role: "user", Content: "Context:\n" + sb.String() + "\nQuery: " + text},
	}
	res, err := c.gateway.Complete(ctx, messages, 600, 0.3)
	if err != nil {
		return nil, err
	}
	diag := c.Diagnostics()
	diag.ContextSourcesUsed = len(candidates)
	return &Result{Answer: res.Text, Path: "basic", Diagnostics: diag}, nil
}

// degradedAnswer synthesizes an answer with the gateway alone, no retrieved
// context, and returns it as a success flagged with reason.
func (c *Coordinator) degradedAnswer(ctx context.Context, text, reason string) (*Result, error) {
	messages := []llm.Message{
		{Role: "system", Content: "Answer the user's query. No reference knowledge is available; rely on general knowledge and say so if it matters."},
		{Role: "user", Content: text},
	}
	res, err := c.gateway.Complete(ctx, messages, 600, 0.3)
	if err != nil {
		return nil, err
	}
	diag := c.Diagnostics()
	diag.DegradedReason = reason
	return &Result{Answer: res.Text, Path: "basic", Diagnostics: diag}, nil
}

// SequentialOnly runs the thinking engine with no retrieval context.
func (c *Coordinator) SequentialOnly(ctx context.Context, text string) (*Result, error) {
	session, err := c.thinking.Run(ctx, text, context7.Bundle{Empty: true})
	if err != nil {
		return nil, err
	}
	diag := c.Diagnostics()
	if diag.KnowledgeEmpty {
		diag.DegradedReason = "knowledge_empty"
	}
	return &Result{Answer: session.Answer, Trace: session, Path: "sequential_only", Interrupted: session.Interrupted, Diagnostics: diag}, nil
}

func basicBundle(r *retrieval.Retriever, query string, k int) context7.Bundle {
	if k <= 0 {
		k = 5
	}
	cands := r.Retrieve(query, k)
	if len(cands) == 0 {
		return context7.Bundle{Empty: true}
	}
	out := make([]context7.Candidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, context7.Candidate{SourceID: c.SourceID, Snippet: c.Snippet, Base: c.Base, Final: c.Base})
	}
	return context7.Bundle{Candidates: out}
}
