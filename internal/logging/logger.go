package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	logger  = log.NewWithOptions(io.Discard, log.Options{})
	logFile *os.File
)

// Init sets up the global logger. An empty path uses the default log file
// under the user cache directory; "-" logs to stderr.
func Init(path, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var w io.Writer
	switch path {
	case "-":
		w = os.Stderr
	default:
		if path == "" {
			path, err = DefaultPath()
			if err != nil {
				return err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		mu.Lock()
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		mu.Unlock()
	}

	SetOutput(w, lvl)
	Info("binfind started", "pid", os.Getpid())
	return nil
}

// DefaultPath returns the dated log file path
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	name := fmt.Sprintf("binfind-%s.log", time.Now().Format("2006-01-02"))
	return filepath.Join(dir, "binfind", "logs", name), nil
}

// SetOutput replaces the global logger. Tests use it to capture output.
func SetOutput(w io.Writer, level log.Level) {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logger.Info("binfind shutting down")
		logFile.Close()
		logFile = nil
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) { current().Info(msg, keyvals...) }

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) { current().Debug(msg, keyvals...) }

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) { current().Warn(msg, keyvals...) }

// Error logs an error message
func Error(msg string, keyvals ...interface{}) { current().Error(msg, keyvals...) }

// WithPrefix returns a logger with a prefix
func WithPrefix(prefix string) *log.Logger {
	return current().WithPrefix(prefix)
}
