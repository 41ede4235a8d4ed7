// Package obslog provides the engine's structured logger and Prometheus
// metrics registry.
package obslog

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// LogLevel is the severity of a log entry, ordered DEBUG < INFO < WARN <
// ERROR < FATAL.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the level's wire tag, the word that appears in every log
// line (e.g. "INFO").
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config string (case-insensitive, "WARNING" accepted
// as an alias for WARN) to a LogLevel, defaulting to INFO.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Logger writes leveled, field-tagged lines to an io.Writer. Fields attached
// via WithField(s) are carried by every line the resulting Logger emits,
// which is how run-scoped context (metric, dimensions, datapoint count)
// rides along without being repeated at every call site.
type Logger struct {
	level  LogLevel
	out    io.Writer
	fields map[string]interface{}
}

// NewLogger creates a logger at the given level writing to out. A nil out
// defaults to os.Stdout.
func NewLogger(level LogLevel, out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{level: level, out: out, fields: map[string]interface{}{}}
}

// NewDefaultLogger creates an INFO-level logger writing to os.Stdout.
func NewDefaultLogger() *Logger {
	return NewLogger(INFO, os.Stdout)
}

// SetLevel changes the minimum level this logger emits.
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// WithFields returns a derived Logger carrying fields in addition to
// whatever fields l already carries; a repeated key is overwritten.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, out: l.out, fields: merged}
}

// WithField is WithFields for a single key/value pair.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) { l.emit(DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...map[string]interface{})  { l.emit(INFO, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...map[string]interface{})  { l.emit(WARN, msg, fields...) }
func (l *Logger) Error(msg string, fields ...map[string]interface{}) { l.emit(ERROR, msg, fields...) }

// Fatal logs at FATAL and terminates the process. The engine itself never
// calls it: cmd/engine reports errors on stderr and returns an exit code.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.emit(FATAL, msg, fields...)
	os.Exit(1)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...interface{})  { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.Fatal(fmt.Sprintf(format, args...)) }

// emit renders one line to l.out if level clears the logger's threshold.
// Fields are sorted by key before rendering: the engine's own determinism
// contract (identical input bytes produce identical output bytes, see
// spec §5) extends to its log lines, so two runs over the same input never
// differ by map iteration order alone.
func (l *Logger) emit(level LogLevel, msg string, extraFields ...map[string]interface{}) {
	if level < l.level {
		return
	}

	all := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for _, fields := range extraFields {
		for k, v := range fields {
			all[k] = v
		}
	}

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteString("] ")
	b.WriteString(level.String())
	b.WriteString(": ")
	b.WriteString(msg)

	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, all[k])
		}
	}
	b.WriteByte('\n')

	l.out.Write([]byte(b.String()))
}

// LogOperation times fn, logging its start and outcome (success or failure,
// with duration either way) at the receiver's field set. The start and
// success lines are logged at INFO, the failure line at ERROR.
func (l *Logger) LogOperation(operation string, fn func() error) error {
	start := time.Now()
	l.Info(fmt.Sprintf("Starting operation: %s", operation))

	err := fn()
	duration := time.Since(start)

	if err != nil {
		l.Error(fmt.Sprintf("Operation failed: %s", operation), map[string]interface{}{
			"duration": duration,
			"error":    err.Error(),
		})
	} else {
		l.Info(fmt.Sprintf("Operation completed: %s", operation), map[string]interface{}{
			"duration": duration,
		})
	}
	return err
}

// LogOperationWithFields is LogOperation against a logger derived with the
// given fields attached.
func (l *Logger) LogOperationWithFields(operation string, fields map[string]interface{}, fn func() error) error {
	return l.WithFields(fields).LogOperation(operation, fn)
}

var globalLogger = NewDefaultLogger()

// SetGlobalLogger replaces the package-level default logger; cmd/engine
// calls this once at startup with the level engineconfig resolved, writing
// to os.Stderr.
func SetGlobalLogger(logger *Logger) { globalLogger = logger }

// GetGlobalLogger returns the package-level default logger.
func GetGlobalLogger() *Logger { return globalLogger }

func Debug(msg string, fields ...map[string]interface{}) { globalLogger.Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { globalLogger.Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { globalLogger.Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { globalLogger.Error(msg, fields...) }
func Fatal(msg string, fields ...map[string]interface{}) { globalLogger.Fatal(msg, fields...) }

func Debugf(format string, args ...interface{}) { globalLogger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { globalLogger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { globalLogger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { globalLogger.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { globalLogger.Fatalf(format, args...) }

// AccessLogger renders one structured line per control-plane HTTP request.
// It is the logging idiom the donor codebase uses for its REST layer;
// here it backs controlplane's accessLogMiddleware, the only two routes
// being /metrics and /status.
type AccessLogger struct {
	logger *Logger
}

// NewAccessLogger wraps logger for access-log use.
func NewAccessLogger(logger *Logger) *AccessLogger {
	return &AccessLogger{logger: logger}
}

// LogAccess logs one request/response pair at INFO.
func (al *AccessLogger) LogAccess(method, path, status string, duration time.Duration, fields map[string]interface{}) {
	all := map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   status,
		"duration": duration,
	}
	for k, v := range fields {
		all[k] = v
	}
	al.logger.Info("Access", all)
}
