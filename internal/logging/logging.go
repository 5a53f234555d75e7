// Package logging provides the small leveled logger used throughout the
// co-evolution core. It wraps the standard library log package the way the
// teacher's cmd/server/main.go does (DEBUG env var toggling verbosity),
// rather than reaching for a third-party structured-logging library that
// the teacher itself never imports.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Level orders logging verbosity, lowest first.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is a minimal leveled wrapper around *log.Logger.
type Logger struct {
	min    Level
	backer *log.Logger
}

// New creates a Logger writing to stderr. If the DEBUG environment variable
// is "true", the minimum level is Debug; otherwise Info.
func New() *Logger {
	min := LevelInfo
	if os.Getenv("DEBUG") == "true" {
		min = LevelDebug
	}
	return &Logger{
		min:    min,
		backer: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// NewWithLevel creates a Logger with an explicit minimum level.
func NewWithLevel(min Level) *Logger {
	return &Logger{min: min, backer: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *Logger) log(level Level, prefix, msg string, fields map[string]interface{}) {
	if level < l.min {
		return
	}
	out := prefix + ": " + msg
	for k, v := range fields {
		out += " " + k + "="
		out += toString(v)
	}
	l.backer.Println(out)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Debugf logs at debug level.
func (l *Logger) Debugf(msg string, fields map[string]interface{}) { l.log(LevelDebug, "DEBUG", msg, fields) }

// Infof logs at info level.
func (l *Logger) Infof(msg string, fields map[string]interface{}) { l.log(LevelInfo, "INFO", msg, fields) }

// Warnf logs at warn level.
func (l *Logger) Warnf(msg string, fields map[string]interface{}) { l.log(LevelWarn, "WARN", msg, fields) }

// Errorf logs at error level.
func (l *Logger) Errorf(msg string, fields map[string]interface{}) { l.log(LevelError, "ERROR", msg, fields) }
