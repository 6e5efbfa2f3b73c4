package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/knowledge"
	"github.com/voidcat-ai/reasoning-core/internal/llm"
	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
	"github.com/voidcat-ai/reasoning-core/internal/thinking"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func buildRetriever(t *testing.T) *retrieval.Retriever {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte("# Freedonia\nthe capital of Freedonia is Lakeview"), 0o644))
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Load(dir))
	return retrieval.New(c)
}

func TestCoordinator_QueryBasicFailsOnEmptyCorpus(t *testing.T) {
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	r := retrieval.New(c)
	coord := New(nil, r, nil, nil, zap.NewNop())

	_, err := coord.QueryBasic(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, voiderr.KnowledgeEmpty, voiderr.KindOf(err))
}

func TestCoordinator_DiagnosticsReflectsEmptyCorpus(t *testing.T) {
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	r := retrieval.New(c)
	coord := New(nil, r, nil, nil, zap.NewNop())

	diag := coord.Diagnostics()
	assert.True(t, diag.KnowledgeEmpty)
}

func TestCoordinator_ConfigureTogglesStages(t *testing.T) {
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	r := retrieval.New(c)
	coord := New(nil, r, nil, nil, zap.NewNop())

	off := false
	coord.Configure(&off, &off)
	coord.refreshDiagnostics()
	diag := coord.Diagnostics()
	assert.False(t, diag.Context7Enabled)
	assert.False(t, diag.ThinkingEnabled)
}

func TestCoordinator_QueryOnEmptyCorpusSkipsContext7AndDegrades(t *testing.T) {
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	r := retrieval.New(c)
	fc := &fakeCompleter{text: `{"text":"no knowledge here","confidence":0.5}`}
	th := thinking.New(fc, thinking.DefaultConfig(), zap.NewNop())
	// context7 is nil: if Query ever called c.context7.Build on the empty
	// corpus this would panic, proving C4 was skipped.
	coord := New(nil, r, nil, th, zap.NewNop())

	res, err := coord.Query(context.Background(), "what is the capital", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "enhanced", res.Path)
	assert.Equal(t, "knowledge_empty", res.Diagnostics.DegradedReason)
	assert.Equal(t, 0, res.Diagnostics.ContextSourcesUsed)
}

func TestCoordinator_QueryReportsContextSourcesUsed(t *testing.T) {
	r := buildRetriever(t)
	fc := &fakeCompleter{text: `{"text":"Lakeview","confidence":0.9}`}
	th := thinking.New(fc, thinking.DefaultConfig(), zap.NewNop())
	coord := New(nil, r, nil, th, zap.NewNop())

	off := false
	coord.Configure(&off, nil) // disable Context7, force the basic-bundle fallback
	res, err := coord.Query(context.Background(), "what is the capital", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics.DegradedReason)
	assert.GreaterOrEqual(t, res.Diagnostics.ContextSourcesUsed, 1)
}

func TestCoordinator_SequentialOnlyUsesThinkingEngine(t *testing.T) {
	r := buildRetriever(t)
	fc := &fakeCompleter{text: `{"text":"done","confidence":0.9}`}
	th := thinking.New(fc, thinking.DefaultConfig(), zap.NewNop())
	coord := New(nil, r, nil, th, zap.NewNop())

	res, err := coord.SequentialOnly(context.Background(), "what is the capital")
	require.NoError(t, err)
	assert.Equal(t, "sequential_only", res.Path)
	assert.NotNil(t, res.Trace)
}

type fakeCompleter struct {
	text string
}

func (f *fakeCompleter) Complete(_ context.Context, _ []llm.Message, _ int, _ float64) (*llm.Result, error) {
	return &llm.Result{Text: f.text}, nil
}
