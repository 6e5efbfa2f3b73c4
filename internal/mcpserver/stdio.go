package mcpserver

import (
	"bufio"
	"io"

	"go.uber.org/zap"
)

// blockingLineReader owns the actual blocking read off src: it scans src one
// newline-delimited line at a time and copies each completed line into dst.
// This is the only place in the process that blocks on stdin, so a
// platform that lacks an async pipe-read primitive is never a problem for
// the dispatcher sitting on the other end of dst.
func blockingLineReader(src io.Reader, dst io.WriteCloser, logger *zap.Logger) {
	defer dst.Close()

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		buf := make([]byte, len(line)+1)
		copy(buf, line)
		buf[len(line)] = '\n'
		if _, err := dst.Write(buf); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil && logger != nil {
		logger.Warn("stdio line reader stopped", zap.Error(err))
	}
}
