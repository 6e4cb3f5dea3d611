// Package logger is the process-wide leveled logger. Until Init or
// SetOutput is called every call is a no-op, so library packages can log
// without side effects for callers that never configure logging.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	globalLogger *log.Logger
	logFile      *os.File
	debugEnabled = true
	mu           sync.Mutex
)

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		globalLogger = nil
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	globalLogger = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// SetOutput logs to w instead of a file. A nil writer disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if w == nil {
		globalLogger = nil
		return
	}
	globalLogger = log.New(w, "", log.Ltime|log.Lmicroseconds)
}

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = enabled
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
}

func printf(level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		return
	}
	if level == "DEBUG" && !debugEnabled {
		return
	}
	globalLogger.Printf("["+level+"] "+format, v...)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	printf("INFO", format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	printf("DEBUG", format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	printf("ERROR", format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	printf("WARN", format, v...)
}

// GetWriter returns the underlying log file, or io.Discard.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}
