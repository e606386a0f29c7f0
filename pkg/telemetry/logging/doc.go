// Package logging constructs the process logger from configuration:
// level and format parsing over log/slog handlers.
package logging
