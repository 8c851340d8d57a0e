// Package logging builds scribe's slog loggers and the user-facing line
// stream.
//
// Loggers render either as compact console lines (level labels coloured on a
// terminal) or as JSON. Every record can also be published to a StreamHub,
// a bounded in-memory buffer that the run command and tests read back. The
// LineSink type carries the short status lines shown to the person at the
// keyboard ("记录完成 ✅ ...") alongside the structured log.
package logging
