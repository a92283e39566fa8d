// Package logger provides structured logging setup and context helpers
// for the application. Logs are JSON-formatted slog records; request
// handling attaches a request-scoped logger to the context so stores and
// services can correlate entries.
package logger
