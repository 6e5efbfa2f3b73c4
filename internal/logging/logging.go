// Package logging provides small helpers over zap so every component binds
// the same structured fields instead of hand-rolling zap.String("component",
// ...) at each call site.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the root logger for the process. Development mode (human
// readable, debug level) unless VOIDCAT_ENV=production, in which case it
// switches to zap's production encoder.
func New() (*zap.Logger, error) {
	if os.Getenv("VOIDCAT_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ForComponent returns a child logger with the "component" field bound.
func ForComponent(logger *zap.Logger, name string) *zap.Logger {
	return logger.With(zap.String("component", name))
}

// WithRequest returns a child logger with a request_id field bound, so every
// log line emitted while handling one request can be correlated.
func WithRequest(logger *zap.Logger, requestID string) *zap.Logger {
	if requestID == "" {
		return logger
	}
	return logger.With(zap.String("request_id", requestID))
}
