// Package common holds the logging primitives shared by the trace reader,
// predictors, and simulation driver. Error logging understands the
// simulator's own *simerr.Error taxonomy: a simerr.Error is broken out into
// its kind and source line rather than flattened into one opaque string, so
// an operator grepping the log for a kind name or a line number finds it.
package common

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"branchsim/internal/simerr"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger interface defines the logging contract for the decoder
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error. Implementations break a *simerr.Error's kind
	// and line number out into their own fields rather than flattening it.
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)
}

// StdLogger implements the Logger interface using Go's standard logger
type StdLogger struct {
	debugLog   *log.Logger
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	minLevel   Severity
}

// NewStdLogger creates a new standard logger
func NewStdLogger(minLevel Severity) *StdLogger {
	return &StdLogger{
		debugLog:   log.New(os.Stdout, "DEBUG: ", log.Ltime|log.Lshortfile),
		infoLog:    log.New(os.Stdout, "INFO: ", log.Ltime),
		warningLog: log.New(os.Stdout, "WARNING: ", log.Ltime),
		errorLog:   log.New(os.Stderr, "ERROR: ", log.Ltime|log.Lshortfile),
		minLevel:   minLevel,
	}
}

// NewStdLoggerWithWriter creates a new standard logger with custom writers
func NewStdLoggerWithWriter(stdout, stderr io.Writer, minLevel Severity) *StdLogger {
	return &StdLogger{
		debugLog:   log.New(stdout, "DEBUG: ", log.Ltime|log.Lshortfile),
		infoLog:    log.New(stdout, "INFO: ", log.Ltime),
		warningLog: log.New(stdout, "WARNING: ", log.Ltime),
		errorLog:   log.New(stderr, "ERROR: ", log.Ltime|log.Lshortfile),
		minLevel:   minLevel,
	}
}

// Log logs a message with the specified severity
func (l *StdLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}

	switch severity {
	case SeverityDebug:
		l.debugLog.Output(2, msg)
	case SeverityInfo:
		l.infoLog.Output(2, msg)
	case SeverityWarning:
		l.warningLog.Output(2, msg)
	case SeverityError:
		l.errorLog.Output(2, msg)
	}
}

// Logf logs a formatted message with the specified severity
func (l *StdLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error. A *simerr.Error is logged at the severity it carries
// (a SevWarn, such as a recoverable malformed-trace condition, is logged as
// a warning rather than an error) with its kind and source line broken out
// as their own fields; any other error is logged at SeverityError verbatim.
func (l *StdLogger) Error(err error) {
	if err == nil {
		return
	}
	var se *simerr.Error
	if errors.As(err, &se) {
		l.Log(severityFor(se.Sev), formatSimErr(se))
		return
	}
	l.Log(SeverityError, err.Error())
}

func severityFor(sev simerr.Severity) Severity {
	if sev == simerr.SevWarn {
		return SeverityWarning
	}
	return SeverityError
}

func formatSimErr(se *simerr.Error) string {
	if se.LineNum > 0 {
		return fmt.Sprintf("[%s] line=%d: %s", se.Kind, se.LineNum, se.Message)
	}
	return fmt.Sprintf("[%s]: %s", se.Kind, se.Message)
}

// Debug logs a debug message
func (l *StdLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *StdLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *StdLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Log does nothing
func (l *NoOpLogger) Log(severity Severity, msg string) {}

// Logf does nothing
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(err error) {}

// Debug does nothing
func (l *NoOpLogger) Debug(msg string) {}

// Info does nothing
func (l *NoOpLogger) Info(msg string) {}

// Warning does nothing
func (l *NoOpLogger) Warning(msg string) {}
