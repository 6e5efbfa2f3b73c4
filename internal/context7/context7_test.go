package context7

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/knowledge"
	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
)

func buildCorpus(t *testing.T, files map[string]string) *knowledge.Corpus {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Load(dir))
	return c
}

func TestEngine_EmptyCorpusProducesEmptyBundleWithDiagnostic(t *testing.T) {
	corpus := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	retr := retrieval.New(corpus)
	e := New(retr, corpus, DefaultWeights(), 500, zap.NewNop())

	bundle := e.Build("how do I configure this", "")
	assert.True(t, bundle.Empty)
	assert.NotEmpty(t, bundle.Analytics.SourcesFailed)
}

func TestEngine_BuildRanksByFinalScore(t *testing.T) {
	corpus := buildCorpus(t, map[string]string{
		"freedonia.md": "# Freedonia\nthe capital of Freedonia is Lakeview, a coastal city.",
		"recipes.md":   "# Baking\nthis document is about baking bread and pastries.",
	})
	retr := retrieval.New(corpus)
	e := New(retr, corpus, DefaultWeights(), 5000, zap.NewNop())

	bundle := e.Build("what is the capital of Freedonia", "")
	require.False(t, bundle.Empty)
	require.NotEmpty(t, bundle.Candidates)
	assert.Contains(t, bundle.Candidates[0].SourceID, "freedonia.md")
}

func TestEngine_RespectsMaxPerCluster(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 6; i++ {
		files[filename(i)] = "# Freedonia\nthe capital of Freedonia is Lakeview, a coastal city with docks."
	}
	corpus := buildCorpus(t, files)
	retr := retrieval.New(corpus)

	w := DefaultWeights()
	w.MaxPerCluster = 2
	w.ClusterThresh = 0.5
	e := New(retr, corpus, w, 100000, zap.NewNop())

	bundle := e.Build("capital of Freedonia", "")
	require.False(t, bundle.Empty)

	counts := map[int]int{}
	for _, c := range bundle.Candidates {
		counts[c.ClusterID]++
	}
	for cluster, n := range counts {
		assert.LessOrEqualf(t, n, w.MaxPerCluster, "cluster %d exceeded MaxPerCluster", cluster)
	}
}

func TestEngine_TokenBudgetLimitsSelection(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 10; i++ {
		files[filename(i)] = "# Topic\nthis is unique content about Freedonia topic number " + string(rune('a'+i))
	}
	corpus := buildCorpus(t, files)
	retr := retrieval.New(corpus)

	w := DefaultWeights()
	w.MinSources = 1
	e := New(retr, corpus, w, 1, zap.NewNop()) // near-zero budget

	bundle := e.Build("Freedonia topic", "")
	assert.LessOrEqual(t, len(bundle.Candidates), 1)
}

func TestAnalyzeIntent_DetectsHowAndCompare(t *testing.T) {
	tags, expansions := analyzeIntent("how do I compare these two configs?")
	assert.True(t, hasIntent(tags, intentHow))
	assert.True(t, hasIntent(tags, intentCompare))
	assert.NotEmpty(t, expansions)
}

func filename(i int) string {
	return "doc" + string(rune('a'+i)) + ".md"
}
