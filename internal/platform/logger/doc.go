// Package logger configures structured logging for studyquest on top of
// log/slog and carries request-scoped loggers through context.Context.
package logger
