package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log severity level
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

var (
	mu       sync.RWMutex
	current  = LevelInfo
	output   io.Writer = os.Stderr
	stdLog   = log.New(os.Stderr, "", log.LstdFlags)
	fileDest *os.File
)

// ParseLevel converts a level name to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// SetLevel sets the minimum level that will be written
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// SetFile redirects log output to the given file path in addition to stderr.
// An empty path resets output to stderr only.
func SetFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if fileDest != nil {
		fileDest.Close()
		fileDest = nil
	}

	if path == "" {
		output = os.Stderr
		stdLog.SetOutput(output)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	fileDest = f
	output = io.MultiWriter(os.Stderr, f)
	stdLog.SetOutput(output)
	return nil
}

func logf(l Level, format string, v ...interface{}) {
	mu.RLock()
	enabled := l >= current
	mu.RUnlock()
	if !enabled {
		return
	}
	stdLog.Printf("[%s] %s", levelNames[l], fmt.Sprintf(format, v...))
}

// Trace logs at trace level
func Trace(format string, v ...interface{}) { logf(LevelTrace, format, v...) }

// Debug logs at debug level
func Debug(format string, v ...interface{}) { logf(LevelDebug, format, v...) }

// Info logs at info level
func Info(format string, v ...interface{}) { logf(LevelInfo, format, v...) }

// Warn logs at warn level
func Warn(format string, v ...interface{}) { logf(LevelWarn, format, v...) }

// Error logs at error level
func Error(format string, v ...interface{}) { logf(LevelError, format, v...) }

// Fatal logs at fatal level and exits
func Fatal(format string, v ...interface{}) {
	logf(LevelFatal, format, v...)
	os.Exit(1)
}
