// Package slog provides logging decorators for docseek services.
// Each decorator logs one line per call with its duration and error.
package slog
