package mcpserver

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBlockingLineReader_ForwardsEachLineAndClosesDst(t *testing.T) {
	src := strings.NewReader("one\ntwo\nthree\n")
	pr, pw := io.Pipe()

	go blockingLineReader(src, pw, zap.NewNop())

	scanner := bufio.NewScanner(pr)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestBlockingLineReader_EmptySourceClosesDstImmediately(t *testing.T) {
	pr, pw := io.Pipe()
	go blockingLineReader(strings.NewReader(""), pw, zap.NewNop())

	b, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Empty(t, b)
}
