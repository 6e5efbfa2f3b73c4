//go:build unix || darwin

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func setupSignalHandler() (context.Context, func()) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
