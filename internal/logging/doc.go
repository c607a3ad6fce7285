// Package logging assembles structured slog loggers and formatting helpers used
// across subburn.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with job IDs, stages, and correlation IDs. The server tees records into
// a JSON log file; retention pruning keeps that directory bounded. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
