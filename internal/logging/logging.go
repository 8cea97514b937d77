// Package logging provides leveled, component-scoped logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a config or flag value to a Level. Unknown values yield
// LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if l == "WARNING" {
		l = LevelWarn
	}
	if _, ok := levelPriority[l]; ok {
		return l, true
	}
	return LevelInfo, false
}

// sink is shared by a logger and everything derived from it.
type sink struct {
	mu     sync.Mutex
	output io.Writer
	level  Level
}

// Logger writes one line per entry to stderr by default, so log output
// never mixes with a printed timeline on stdout.
type Logger struct {
	sink      *sink
	component string
}

// New creates a new Logger at INFO level.
func New() *Logger {
	return &Logger{sink: &sink{output: os.Stderr, level: LevelInfo}}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New()
	l.SetOutput(io.Discard)
	return l
}

// WithComponent returns a logger tagging entries with component. Level and
// output stay shared with the parent.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return levelPriority[level] >= levelPriority[l.sink.level]
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields renders fields as key=value pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fmt.Sprintf("%v", fields[k])
		if strings.ContainsAny(v, " \t\n\"") {
			v = fmt.Sprintf("%q", v)
		}
		parts = append(parts, k+"="+v)
	}
	return " " + strings.Join(parts, " ")
}

// log writes an entry as: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output.Write([]byte(line))
}

// LogLoaded logs a successfully parsed game log.
func (l *Logger) LogLoaded(path string, players, events int, duration time.Duration) {
	l.Info("log_loaded", map[string]interface{}{
		"path":     path,
		"players":  players,
		"events":   events,
		"duration": duration.String(),
	})
}

// TimelineCompiled logs the result of a compilation.
func (l *Logger) TimelineCompiled(mode string, events, beats, phases int) {
	l.Debug("timeline_compiled", map[string]interface{}{
		"mode":   mode,
		"events": events,
		"beats":  beats,
		"phases": phases,
	})
}

// LogReloaded logs a live reload of a watched file.
func (l *Logger) LogReloaded(path string, beats int, err error) {
	fields := map[string]interface{}{
		"path":  path,
		"beats": beats,
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Warn("log_reload_failed", fields)
		return
	}
	l.Debug("log_reloaded", fields)
}
