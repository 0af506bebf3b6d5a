// Package logging provides the leveled, colorized diagnostic logger.
// Diagnostics go to stderr; command output stays on stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level is a log severity.
type Level int

// Log levels, least to most severe.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

var levelNames = map[Level]string{
	LevelTrace:   "TRACE",
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelSuccess: "SUCCESS",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

var levelColors = map[Level]*color.Color{
	LevelTrace:   color.New(color.FgHiBlack),
	LevelDebug:   color.New(color.FgBlue),
	LevelInfo:    color.New(color.FgGreen),
	LevelSuccess: color.New(color.FgWhite),
	LevelWarning: color.New(color.FgYellow),
	LevelError:   color.New(color.FgRed),
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name (case-insensitive) to a Level.
// WARN and CRITICAL are accepted as aliases of WARNING and ERROR.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "SUCCESS":
		return LevelSuccess, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR", "CRITICAL":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level %q (valid: TRACE, DEBUG, INFO, SUCCESS, WARNING, ERROR)", s)
}

// Logger writes leveled messages. Safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a logger writing messages at or above level to out.
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

// Stderr returns a logger writing to stderr at the given level.
func Stderr(level Level) *Logger {
	return New(os.Stderr, level)
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	// Debug and trace output carries the level tag so it stands out from results.
	if level <= LevelDebug {
		msg = "[" + level.String() + "] " + msg
	}
	levelColors[level].Fprintln(l.out, msg)
}

// Tracef logs at TRACE.
func (l *Logger) Tracef(format string, args ...any) { l.logf(LevelTrace, format, args...) }

// Debugf logs at DEBUG.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at INFO.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Successf logs at SUCCESS.
func (l *Logger) Successf(format string, args ...any) { l.logf(LevelSuccess, format, args...) }

// Warnf logs at WARNING.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarning, format, args...) }

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
