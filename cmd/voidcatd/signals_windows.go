//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// setupSignalHandler returns a context cancelled on Ctrl+C.
func setupSignalHandler() (context.Context, func()) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
