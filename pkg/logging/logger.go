package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	out := &sink{writer: writer, now: time.Now}
	out.level.Store(int32(level))
	return &JSONLogger{out: out}
}

// NewDiagnosticLogger creates a logger on standard error. Standard output is
// reserved for classification results.
func NewDiagnosticLogger(level Level) *JSONLogger {
	return NewJSONLogger(os.Stderr, level)
}

func (l *JSONLogger) enabled(level Level) bool {
	return level >= Level(l.out.level.Load())
}

func (l *JSONLogger) encode(level Level, msg string, fields []Field) []byte {
	entry := LogEntry{
		Time:    l.out.now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if n := len(l.fields) + len(fields); n > 0 {
		entry.Fields = make(map[string]any, n)
		for _, f := range l.fields {
			entry.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Appendf(nil, "{\"time\":%q,\"level\":\"ERROR\",\"msg\":\"unencodable log entry\",\"fields\":{\"error\":%q}}\n",
			entry.Time, err.Error())
	}
	return append(data, '\n')
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if !l.enabled(level) {
		return
	}
	data := l.encode(level, msg, fields)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.writer.Write(data)
}

// Debug logs a debug-level message
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields)
}

// Info logs an info-level message
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields)
}

// Warn logs a warning-level message
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields)
}

// Error logs an error-level message
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields)
}

// With creates a child logger with the given fields pre-set
func (l *JSONLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &JSONLogger{out: l.out, fields: merged}
}

// SetLevel sets the minimum log level of the logger and every logger derived
// from the same root.
func (l *JSONLogger) SetLevel(level Level) {
	l.out.level.Store(int32(level))
}

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level {
	return Level(l.out.level.Load())
}

var (
	defaultMu     sync.Mutex
	defaultLogger Logger
)

// DefaultLogger returns the global default logger: JSON on standard error at
// the level named by LOG_LEVEL, INFO when unset.
func DefaultLogger() Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewDiagnosticLogger(ParseLevel(os.Getenv("LOG_LEVEL")))
	}
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// Elapsed returns the time since the operation started.
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs the operation at INFO with its latency.
func (t *TimedOperation) End(fields ...Field) time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Info(t.msg, t.merge(fields, Latency(elapsed))...)
	return elapsed
}

// EndError logs the operation at ERROR with its latency and the failure.
func (t *TimedOperation) EndError(err error) time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Error(t.msg, t.merge(nil, Latency(elapsed), Error(err))...)
	return elapsed
}

func (t *TimedOperation) merge(extra []Field, tail ...Field) []Field {
	all := make([]Field, 0, len(t.fields)+len(extra)+len(tail))
	all = append(all, t.fields...)
	all = append(all, extra...)
	return append(all, tail...)
}
