// Package logger provides the structured logging interface used across saafetch.
//
// It wraps zerolog behind a small Logger interface so components can be
// handed a TestLogger or a no-op logger in tests:
//
//	log, err := logger.New(&cfg.Logging)
//	log.WithField("identifier", "ACT00001").Info("Queued for preparation")
//
// Console output is colored and written to stderr. When a log file is
// configured, JSON lines are appended to it as well.
package logger
