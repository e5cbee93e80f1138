// Package log configures [log/slog] handlers for kls.
//
// Three formats are supported: JSON and logfmt from the standard library,
// and a human-friendly text format from [github.com/charmbracelet/log].
// Loggers can be carried in a [context.Context] and are annotated with the
// active trace ID.
package log
