package log

import "time"

// Timer measures an operation and logs its duration when stopped
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
	level     Level
	fields    Fields
}

// NewTimer starts a timer for operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		start:     time.Now(),
		level:     LevelDebug,
		fields:    make(Fields),
	}
}

// WithLevel sets the level the completion entry is logged at
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop logs the completion entry and returns the elapsed time
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	if !t.level.Enabled(t.logger.level) {
		return elapsed
	}

	entry := NewEntry(t.level, t.operation+" completed")
	entry.Logger = t.logger.name
	entry.RequestID = t.logger.requestID
	entry.Duration = elapsed
	entry.Fields = t.logger.fields.Merge(t.fields)
	entry.Fields["operation"] = t.operation
	t.logger.write(entry)
	return elapsed
}
