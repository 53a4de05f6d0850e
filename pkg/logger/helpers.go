package logger

import (
	"time"
)

// Download outcomes reported by LogDownload
const (
	OutcomeDownloaded = "downloaded"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// LogDownload logs the outcome of a single image
func LogDownload(l Logger, photoID, label, outcome string, err error) {
	l = l.WithFields(map[string]interface{}{
		"photo_id": photoID,
		"label":    label,
		"outcome":  outcome,
	})

	switch {
	case err != nil:
		l.WithError(err).Error("Download failed")
	case outcome == OutcomeSkipped:
		l.Debug("Download skipped, file exists")
	default:
		l.Info("Download completed")
	}
}

// LogComponentStart logs when a pipeline step starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	l = l.WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Info("Component started")
}

// LogComponentStop logs when a pipeline step finishes
func LogComponentStop(l Logger, component string, elapsed time.Duration, stats map[string]interface{}) {
	fields := map[string]interface{}{
		"component": component,
		"elapsed":   elapsed,
	}
	for k, v := range stats {
		fields[k] = v
	}
	l.InfoWithFields("Component stopped", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
