// Package logging provides the session log shared by pmchat components.
//
// Every component writes to ~/.pmchat/logs/<session-id>-pmchat.log so the
// terminal stays free for the conversation. Set PMCHAT_LOG_DIR to log
// somewhere else.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes timestamped, component-tagged lines. There is no level
// filtering: every call is written.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	logPath   string
	mu        sync.Mutex
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		if dir := os.Getenv("PMCHAT_LOG_DIR"); dir != "" {
			logDir = dir
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".pmchat", "logs")
		}
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for a component, appending to the session log.
//
// If the log file cannot be opened it returns a logger writing to stderr
// together with the error, so callers may warn and carry on.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newWriterLogger(component, os.Stderr), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-pmchat.log", sessID))

	// Several components append to the same file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newWriterLogger(component, os.Stderr), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

// NewWriterLogger creates a logger that writes to w instead of the
// session file.
func NewWriterLogger(component string, w io.Writer) *Logger {
	return newWriterLogger(component, w)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return newWriterLogger("nop", io.Discard)
}

func newWriterLogger(component string, w io.Writer) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    log.New(w, "", 0),
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, or "" when not file-backed.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}
