// Package logging assembles structured slog loggers and the plain-text run
// transcript.
//
// Build loggers print a compact console line and, when a log directory is
// configured, mirror every record as JSON into previsbine.log. Context helpers
// tag records with the stage, plugin, and run ID. The Transcript type is
// separate from slog: it is the human-readable run log that also collects the
// raw Creation Kit and xEdit logs, decoded from Windows-1252 when needed.
package logging
