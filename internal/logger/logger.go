// Package logger is the client's process-wide log. It prints to stderr so
// stdout stays free for command output and the MCP stdio transport.
//
// Errors always print. Debug, Info and Warn print only in verbose mode,
// which the --verbose flag turns on to trace cache hits, history writes and
// surface transitions. Lines are "[LEVEL] message" by default, or one JSON
// object per line with SetJSON(true).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	asJSON  bool
	output  io.Writer = os.Stderr
	base              = build()
)

// build returns a logger for the current settings. Callers hold mu.
func build() zerolog.Logger {
	level := zerolog.ErrorLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if asJSON {
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(v any) string {
			return "[" + strings.ToUpper(fmt.Sprint(v)) + "]"
		},
	}).Level(level)
}

func update(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
	base = build()
}

// SetVerbose turns debug, info and warning output on or off.
func SetVerbose(v bool) {
	update(func() { verbose = v })
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between console lines and JSON objects.
func SetJSON(v bool) {
	update(func() { asJSON = v })
}

// SetOutput redirects the log. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	update(func() { output = w })
}

// Debug logs a verbose-only trace line.
func Debug(format string, args ...any) { emit(zerolog.DebugLevel, "", format, args) }

// Info logs a verbose-only progress line.
func Info(format string, args ...any) { emit(zerolog.InfoLevel, "", format, args) }

// Warn logs a verbose-only recoverable failure.
func Warn(format string, args ...any) { emit(zerolog.WarnLevel, "", format, args) }

// Error logs a failure. It prints even without verbose mode.
func Error(format string, args ...any) { emit(zerolog.ErrorLevel, "", format, args) }

func emit(level zerolog.Level, component, format string, args []any) {
	// The write happens under the lock so lines never interleave and
	// SetOutput never races a write in progress.
	mu.Lock()
	defer mu.Unlock()

	ev := base.WithLevel(level)
	if ev == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if component != "" {
		if asJSON {
			ev = ev.Str("component", component)
		} else {
			msg = "[" + component + "] " + msg
		}
	}
	ev.Msg(msg)
}

// Logger tags every line with a component name.
type Logger struct {
	component string
}

// Scoped returns a logger for one component. In console mode its lines
// read "[DEBUG] [resultcache] hit ..."; in JSON mode the name is the
// "component" field.
func Scoped(component string) *Logger {
	return &Logger{component: component}
}

// Debug logs a verbose-only trace line for the component.
func (l *Logger) Debug(format string, args ...any) {
	emit(zerolog.DebugLevel, l.component, format, args)
}

// Info logs a verbose-only progress line for the component.
func (l *Logger) Info(format string, args ...any) {
	emit(zerolog.InfoLevel, l.component, format, args)
}

// Warn logs a verbose-only recoverable failure for the component.
func (l *Logger) Warn(format string, args ...any) {
	emit(zerolog.WarnLevel, l.component, format, args)
}

// Error logs a failure for the component. It prints even without
// verbose mode.
func (l *Logger) Error(format string, args ...any) {
	emit(zerolog.ErrorLevel, l.component, format, args)
}
