// Package logging provides structured, leveled logging for the RCA engine.
//
// It is deliberately boring: a named logger per package, key/value fields,
// and per-package level overrides for targeted debugging during an
// investigation (e.g. --log-level evidence=debug). Investigation-scoped
// loggers pick up the OpenTelemetry trace/span id from context so log lines
// correlate with the span emitted by internal/telemetry.
package logging

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Level is a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "INFO"
	}
}

func parseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return Debug, nil
	case "INFO":
		return Info, nil
	case "WARN", "WARNING":
		return Warn, nil
	case "ERROR":
		return Error, nil
	case "FATAL":
		return Fatal, nil
	default:
		return Info, fmt.Errorf("invalid log level %q (want debug|info|warn|error|fatal)", s)
	}
}

// Field is a structured key/value pair attached to a single log line.
type Field struct {
	Key   string
	Value interface{}
}

func F(key string, value interface{}) Field { return Field{Key: key, Value: value} }

var (
	mu            sync.RWMutex
	defaultLevel  = Info
	packageLevels = map[string]Level{}
	initOnce      sync.Once
	exitFunc      = os.Exit
)

// Initialize sets the default level and optional per-package overrides.
// Pattern keys ending in ".*" match any package with that prefix.
func Initialize(level string, packageOverrides map[string]string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	overrides := make(map[string]Level, len(packageOverrides))
	for pkg, s := range packageOverrides {
		l, err := parseLevel(s)
		if err != nil {
			return fmt.Errorf("package %q: %w", pkg, err)
		}
		overrides[pkg] = l
	}

	mu.Lock()
	defer mu.Unlock()
	defaultLevel = lvl
	packageLevels = overrides
	return nil
}

func effectiveLevel(name string) Level {
	mu.RLock()
	defer mu.RUnlock()

	if l, ok := packageLevels[name]; ok {
		return l
	}

	var best string
	for pattern := range packageLevels {
		if !strings.HasSuffix(pattern, ".*") {
			continue
		}
		prefix := strings.TrimSuffix(pattern, ".*")
		if strings.HasPrefix(name, prefix+".") && len(pattern) > len(best) {
			best = pattern
		}
	}
	if best != "" {
		return packageLevels[best]
	}
	return defaultLevel
}

// Logger is an immutable, named leveled logger. Methods that attach context
// or fields return a new Logger; the zero value is never used directly.
type Logger struct {
	name   string
	fields []Field
	ctx    context.Context
}

// Get returns a logger for the given package/component name. Safe to call
// before Initialize; defaults to info level until Initialize runs.
func Get(name string) *Logger {
	initOnce.Do(func() {})
	return &Logger{name: name}
}

func (l *Logger) With(fields ...Field) *Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{name: l.name, fields: merged, ctx: l.ctx}
}

// WithContext attaches a context so the trace/span id of any active
// OpenTelemetry span is included in subsequent log lines.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{name: l.name, fields: l.fields, ctx: ctx}
}

func (l *Logger) enabled(lvl Level) bool { return lvl >= effectiveLevel(l.name) }

func (l *Logger) emit(lvl Level, msg string, extra ...Field) {
	if !l.enabled(lvl) {
		return
	}
	all := make([]Field, 0, len(l.fields)+len(extra)+2)
	if l.ctx != nil {
		if sc := trace.SpanContextFromContext(l.ctx); sc.IsValid() {
			all = append(all, F("trace_id", sc.TraceID().String()), F("span_id", sc.SpanID().String()))
		}
	}
	all = append(all, l.fields...)
	all = append(all, extra...)

	line := fmt.Sprintf("[%s] [%s] %s: %s", timestamp(), lvl, l.name, msg)
	for _, f := range all {
		line += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}

	if lvl >= Error {
		fmt.Fprintln(os.Stderr, line)
	} else {
		log.Println(line)
	}
}

func timestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(Debug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(Info, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(Warn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(Error, msg, fields...) }

// ErrorErr logs an error message along with the error's Error() string under
// the "error" field.
func (l *Logger) ErrorErr(msg string, err error, fields ...Field) {
	l.emit(Error, msg, append(fields, F("error", err.Error()))...)
}

// Fatal logs at fatal level and terminates the process. Tests can override
// the exit behavior by swapping exitFunc.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.emit(Fatal, msg, fields...)
	exitFunc(1)
}
