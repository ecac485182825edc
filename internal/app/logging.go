package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the level's display name.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a level name, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger writes leveled, line-oriented log messages. Additional context
// is passed as alternating key/value pairs:
//
//	log.Info("session started", "id", term.ID(), "shell", shell)
//
// Logger is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	output   io.Writer
	prefix   string
	fields   []any
	disabled bool
}

// NewLogger creates a logger writing to output at the given level.
func NewLogger(output io.Writer, level LogLevel) *Logger {
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:  level,
		output: output,
		prefix: "termmark",
	}
}

// NullLogger discards everything.
var NullLogger = &Logger{disabled: true}

// With returns a logger with the given key/value pairs attached to
// every message.
func (l *Logger) With(fields ...any) *Logger {
	combined := make([]any, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)

	return &Logger{
		level:    l.level,
		output:   l.output,
		prefix:   l.prefix,
		fields:   combined,
		disabled: l.disabled,
	}
}

// SetLevel sets the minimum level written.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...any) {
	l.log(LogLevelDebug, msg, fields)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...any) {
	l.log(LogLevelInfo, msg, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...any) {
	l.log(LogLevelWarn, msg, fields)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...any) {
	l.log(LogLevelError, msg, fields)
}

func (l *Logger) log(level LogLevel, msg string, fields []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled || level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	writeFields(&b, l.fields)
	writeFields(&b, fields)
	b.WriteByte('\n')

	_, _ = l.output.Write([]byte(b.String()))
}

// writeFields appends alternating key/value pairs as " k=v". A trailing
// key without a value is emitted as-is.
func writeFields(b *strings.Builder, fields []any) {
	for i := 0; i < len(fields); i += 2 {
		b.WriteByte(' ')
		fmt.Fprintf(b, "%v", fields[i])
		if i+1 < len(fields) {
			fmt.Fprintf(b, "=%v", fields[i+1])
		}
	}
}
