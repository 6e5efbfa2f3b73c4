package retrieval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/knowledge"
)

func TestRetriever_EmptyCorpus(t *testing.T) {
	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	r := New(c)

	assert.True(t, r.Empty())
	assert.Empty(t, r.Retrieve("anything", 5))
}

func TestRetriever_RetrieveMapsCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# Lakeview\nthe capital of Freedonia is Lakeview"), 0o644))

	c := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Load(dir))
	r := New(c)

	assert.False(t, r.Empty())
	cands := r.Retrieve("capital of Freedonia", 3)
	require.NotEmpty(t, cands)
	assert.Contains(t, cands[0].SourceID, "a.md")
	assert.Greater(t, cands[0].Base, 0.0)
}
