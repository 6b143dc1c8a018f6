package main

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel orders server log severities. Messages below the configured
// level are dropped.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// levelNames drives both parsing and rendering, so the two cannot drift.
var levelNames = map[LogLevel]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// parseLogLevel maps a level name (case-insensitive) to its LogLevel.
// Unrecognized names fall back to info. "warning" is accepted as an alias.
func parseLogLevel(name string) LogLevel {
	name = strings.ToLower(name)
	if name == "warning" {
		return LogLevelWarn
	}
	for level, n := range levelNames {
		if n == name {
			return level
		}
	}
	return LogLevelInfo
}

// Logger is the server's leveled logger. It writes one line per message,
// tagged with the severity.
type Logger struct {
	level LogLevel
	out   *log.Logger
}

// NewLogger creates a logger filtering below the named level.
func NewLogger(level string) *Logger {
	return &Logger{
		level: parseLogLevel(level),
		out:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

// SetOutput redirects log output, mainly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

func (l *Logger) logf(level LogLevel, format string, v ...any) {
	if level < l.level {
		return
	}
	l.out.Printf(strings.ToUpper(level.String())+" "+format, v...)
}

func (l *Logger) Debugf(format string, v ...any) { l.logf(LogLevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...any)  { l.logf(LogLevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...any)  { l.logf(LogLevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...any) { l.logf(LogLevelError, format, v...) }

// Fatalf logs regardless of level and exits.
func (l *Logger) Fatalf(format string, v ...any) {
	l.out.Fatalf("FATAL "+format, v...)
}
