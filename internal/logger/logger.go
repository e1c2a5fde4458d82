// Package logger provides leveled logging to the console and, optionally,
// an append-only log file.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Level is a log severity.
type Level string

const (
	DEBUG Level = "DEBUG"
	INFO  Level = "INFO"
	ERROR Level = "ERROR"
)

// Manager writes leveled log lines.
type Manager struct {
	file   *os.File
	logger *log.Logger
	prefix string
	debug  bool
}

// New logs to stderr, and also to logFilePath when it is not empty.
func New(logFilePath string, debug bool) (*Manager, error) {
	var out io.Writer = os.Stderr
	var file *os.File

	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stderr, f)
	}

	return &Manager{
		file:   file,
		logger: log.New(out, "", log.LstdFlags),
		debug:  debug,
	}, nil
}

// NewWriter logs to w only. Used by tests and tools.
func NewWriter(w io.Writer, debug bool) *Manager {
	return &Manager{logger: log.New(w, "", log.LstdFlags), debug: debug}
}

// Discard drops everything.
func Discard() *Manager {
	return NewWriter(io.Discard, false)
}

// With returns a logger sharing the same output whose lines start with tag.
func (l *Manager) With(tag string) *Manager {
	c := *l
	c.prefix = l.prefix + "[" + tag + "] "
	return &c
}

// Close closes the log file, if any.
func (l *Manager) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Manager) logWithLevel(level Level, format string, args ...interface{}) {
	l.logger.Printf("%s: %s%s", level, l.prefix, fmt.Sprintf(format, args...))
}

func (l *Manager) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.logWithLevel(DEBUG, format, args...)
}

func (l *Manager) Info(format string, args ...interface{}) {
	l.logWithLevel(INFO, format, args...)
}

func (l *Manager) Error(format string, args ...interface{}) {
	l.logWithLevel(ERROR, format, args...)
}

// LogError logs err with some context, ignoring nil errors.
func (l *Manager) LogError(err error, context string) {
	if err != nil {
		l.Error("%s: %v", context, err)
	}
}
