package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCorpus_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	c := NewCorpus(DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Load(dir))

	assert.True(t, c.Empty())
	assert.Empty(t, c.Search("anything", 5))
}

func TestCorpus_SearchRanksByRelevance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "freedonia.md", "# Freedonia\nthe capital of Freedonia is Lakeview. It is a small nation.")
	writeFile(t, dir, "unrelated.md", "# Baking\nThis document is about baking bread and pastries.")

	c := NewCorpus(DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Load(dir))
	assert.False(t, c.Empty())

	results := c.Search("What is the capital of Freedonia?", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "freedonia.md", results[0].Path)
	assert.Contains(t, results[0].Snippet, "Lakeview")
}

func TestCorpus_RejectsNonDirectoryRoot(t *testing.T) {
	// Load must error cleanly when handed a regular file instead of a
	// directory: the corpus must not silently ingest a bad root.
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir.md")
	writeFile(t, dir, "not-a-dir.md", "x")

	c := NewCorpus(DefaultConfig(), zap.NewNop())
	err := c.Load(file)
	assert.Error(t, err)
}

func TestCorpus_ChunksLargeDocuments(t *testing.T) {
	dir := t.TempDir()
	big := ""
	for i := 0; i < 500; i++ {
		big += "word "
	}
	writeFile(t, dir, "big.md", big)

	cfg := Config{ChunkWindow: 200, ChunkStride: 150, MaxDocSize: 100}
	c := NewCorpus(cfg, zap.NewNop())
	require.NoError(t, c.Load(dir))
	assert.Greater(t, c.Size(), 1)
}

func TestCorpus_SanitizesSnippets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "# X\n<script>alert(1)</script> safe Freedonia text")

	c := NewCorpus(DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Load(dir))

	results := c.Search("Freedonia", 1)
	require.NotEmpty(t, results)
	assert.NotContains(t, results[0].Snippet, "<script>")
}
