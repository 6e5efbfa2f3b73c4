package main

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags gives each test its own FlagSet so repeated run() calls don't
// hit flag's "flag redefined" panic from package-level flag.Parse.
func resetFlags(args ...string) {
	flag.CommandLine = flag.NewFlagSet(args[0], flag.ContinueOnError)
	os.Args = args
}

func TestRun_BadConfigExitsTwo(t *testing.T) {
	t.Setenv("VOIDCAT_MODE", "bogus")
	resetFlags("voidcatd")

	assert.Equal(t, exitBadConfig, run())
}

func TestRun_MissingLLMKeyExitsFour(t *testing.T) {
	t.Setenv("VOIDCAT_MODE", "http")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("VOIDCAT_KNOWLEDGE_DIR", t.TempDir())
	resetFlags("voidcatd")

	assert.Equal(t, exitLLMUnconfigured, run())
}

func TestRun_KnowledgeLoadFailureExitsThree(t *testing.T) {
	// A regular file in place of a directory fails collectMarkdownFiles'
	// os.Stat().IsDir() check rather than the "missing dir is fine" path.
	notADir := t.TempDir() + "/not-a-directory"
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	t.Setenv("VOIDCAT_MODE", "http")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("VOIDCAT_KNOWLEDGE_DIR", notADir)
	resetFlags("voidcatd")

	assert.Equal(t, exitKnowledgeLoad, run())
}
