// Package logging assembles the structured slog loggers used across annodocs.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so a parse run can tag every line
// with its run id and document. A no-op logger is provided for tests and for
// wiring code that may receive a nil logger.
package logging
