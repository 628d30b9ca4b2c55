// Package logging provides structured logging for sdclint.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console formats
//   - Context-aware logging with run, project and component fields
//   - Configurable log levels (debug, info, warn, error)
//
// Logs go to stderr by default; lint reports are written to stdout.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "console"})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "Start validation", "project", dir)
//
// Library packages take a *slog.Logger; pass logger.Slog().
package logging
