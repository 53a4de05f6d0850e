// Package logger provides a structured logging interface for inatfetch.
//
// It wraps zerolog with a small field-oriented API:
//   - Levels Debug, Info, Warn and Error
//   - Structured fields via WithField, WithFields and WithError
//   - Console output on stderr, colored only when stderr is a terminal
//   - Optional JSON file output alongside the console
//   - A global logger for the CLI and injectable loggers for library code
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//
//	logger.Info("Run started")
//	logger.WithField("photo_id", "12345").Info("Download completed")
//
// Tests use NewNopLogger, or NewTestLogger to assert on what was logged.
package logger
