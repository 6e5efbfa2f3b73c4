package mcpserver

import (
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// NewStdioTransport builds the MCP stdio transport with a blocking-line-reader
// worker in front of it. mcp.StdioTransport reads os.Stdin directly, and on
// some hosts (notably Windows consoles) there is no async way to poll a pipe
// for readiness; the portable fix is to never ask the OS for that and
// instead dedicate a worker goroutine to the blocking read, forwarding
// completed lines to the transport through an OS pipe. Swapping
// blockingLineReader for a different worker strategy is the only thing a
// platform port would ever need to change here; the dispatcher in
// registry.go never sees the difference.
//
// The returned close func restores the original os.Stdin and must be called
// once the transport is no longer in use.
func NewStdioTransport(logger *zap.Logger) (*mcp.StdioTransport, func() error, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}

	realStdin := os.Stdin
	os.Stdin = pr
	go blockingLineReader(realStdin, pw, logger)

	closeFn := func() error {
		os.Stdin = realStdin
		return pr.Close()
	}
	return &mcp.StdioTransport{}, closeFn, nil
}
