package logger

import (
	"time"
)

// LogRequest logs an archive HTTP exchange at a level matching its status
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 500:
		l.WarnWithFields("Archive request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("Archive request client error", fields)
	default:
		l.DebugWithFields("Archive request completed", fields)
	}
}

// LogFetchOutcome logs the terminal outcome of one scan fetch.
// Failures are logged at warn so one bad scan never looks like a crash.
func LogFetchOutcome(l Logger, identifier, outcome string, attempts, prepareRequests int, err error) {
	fields := map[string]interface{}{
		"identifier":       identifier,
		"outcome":          outcome,
		"attempts":         attempts,
		"prepare_requests": prepareRequests,
	}

	if err != nil {
		l.WithError(err).WarnWithFields("Scan fetch failed", fields)
		return
	}
	l.InfoWithFields("Scan fetch finished", fields)
}

// LogBatchSummary logs the per-outcome counts of a finished batch
func LogBatchSummary(l Logger, total int, counts map[string]int, elapsed time.Duration) {
	fields := map[string]interface{}{
		"total":   total,
		"elapsed": elapsed,
	}
	for outcome, n := range counts {
		fields[outcome] = n
	}
	l.InfoWithFields("Batch finished", fields)
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(msg string)                                          {}
func (n nopLogger) Info(msg string)                                           {}
func (n nopLogger) Warn(msg string)                                           {}
func (n nopLogger) Error(msg string)                                          {}
func (n nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n nopLogger) WithError(err error) Logger                                { return n }
func (n nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
