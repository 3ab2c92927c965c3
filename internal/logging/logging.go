// Package logging provides the leveled logger shared by the readers, the
// export pipeline and the viewer server.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Format selects how log lines are rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Logger provides leveled logging
type Logger struct {
	mu     sync.RWMutex
	level  Level
	format Format
	out    io.Writer
	logger *log.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New returns a logger writing text lines at LevelInfo to w.
func New(w io.Writer) *Logger {
	return &Logger{
		level:  LevelInfo,
		out:    w,
		logger: log.New(w, "", log.LstdFlags|log.LUTC),
	}
}

// Default returns the default logger instance
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// ParseLevel maps a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevelFromString sets the log level from a string
func (l *Logger) SetLevelFromString(levelStr string) {
	l.SetLevel(ParseLevel(levelStr))
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// GetLevelString returns the current log level as a string
func (l *Logger) GetLevelString() string {
	return levelNames[l.GetLevel()]
}

// SetFormat switches between text and JSON lines. Anything other than
// "json" selects text.
func (l *Logger) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if strings.EqualFold(format, "json") {
		l.format = FormatJSON
	} else {
		l.format = FormatText
	}
}

// SetOutput redirects the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.logger.SetOutput(w)
}

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	currentLevel, lineFormat, out := l.level, l.format, l.out
	l.mu.RUnlock()

	if level < currentLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if lineFormat == FormatJSON {
		line, err := json.Marshal(jsonLine{
			Time:    time.Now().UTC().Format(time.RFC3339),
			Level:   levelNames[level],
			Message: msg,
		})
		if err == nil {
			l.mu.Lock()
			_, _ = out.Write(append(line, '\n'))
			l.mu.Unlock()
			return
		}
	}

	l.logger.Printf("[%s] %s", levelNames[level], msg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Package-level convenience functions

// SetLevel sets the default logger's level
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// SetLevelFromString sets the default logger's level from a string
func SetLevelFromString(levelStr string) {
	Default().SetLevelFromString(levelStr)
}

// GetLevelString returns the default logger's level as a string
func GetLevelString() string {
	return Default().GetLevelString()
}

// SetFormat sets the default logger's line format
func SetFormat(format string) {
	Default().SetFormat(format)
}

// SetOutput redirects the default logger
func SetOutput(w io.Writer) {
	Default().SetOutput(w)
}

// Debug logs a debug message to the default logger
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Info logs an info message to the default logger
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn logs a warning message to the default logger
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Error logs an error message to the default logger
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}
