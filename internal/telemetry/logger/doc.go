// Package logger provides structured logging for SessionKit.
//
// It wraps log/slog with a small Logger interface, a process-wide level that
// can be changed at runtime, and redaction of credentials. Access tokens,
// refresh cookies and passwords pass through the client on every request, so
// every handler built here runs attributes through the redaction hook before
// they are written.
package logger
