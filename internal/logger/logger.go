// Package logger is the logging seam shared by spsmon's components. The
// scpi session, the poller, and the recorder sinks all write through the
// Logger interface: headless commands let messages reach stderr, the
// monitor command swaps in a silent logger so reconnect chatter cannot
// draw over the dashboard, and tests capture messages with a BufferLogger.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is the printf-style leveled logger components write to.
// Components tag their own messages ("[scpi] ...", "[poller] ...") so a
// single logger serves the whole process.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger writes to stderr. Debug lines are gated on SPSMON_DEBUG so
// the reconnect loop stays quiet unless someone is actually looking.
type envLogger struct{}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if os.Getenv("SPSMON_DEBUG") != "" {
		log.Printf(format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	log.Printf(format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	log.Printf("WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	log.Printf("ERROR: "+format, args...)
}

type noopLogger struct{}

// Noop returns a logger that discards everything. The monitor command
// installs it as the default while the dashboard owns the terminal.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage is one captured log line.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures messages for test assertions. Appends are not
// synchronized; hand it to components that log from the caller's
// goroutine, like the poller's Cycle.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that records messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{Messages: make([]LogMessage, 0)}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.append("debug", format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.append("info", format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.append("warn", format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.append("error", format, args) }

func (l *BufferLogger) append(level, format string, args []interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

// HasLevel reports whether any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Contains reports whether any captured message includes the substring.
func (l *BufferLogger) Contains(sub string) bool {
	for _, m := range l.Messages {
		if strings.Contains(m.Message, sub) {
			return true
		}
	}
	return false
}

var defaultLogger Logger = &envLogger{}

// Default returns the process-wide logger.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger. Components capture the
// default at construction, so swap it before building sessions and
// pollers.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}
