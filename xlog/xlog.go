// Package xlog provides a small leveled wrapper around the standard library
// log package. It generalizes the severity-prefixed log.Printf convention
// used ad hoc throughout the rest of this kind of codebase ("ERROR: ...",
// "WARN ...") into a single reusable Logger with an explicit severity
// threshold, so call sites just say what happened and the Logger decides
// whether it's worth printing.
package xlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level is a logging severity. Higher values are more verbose.
type Level int

const (
	// None disables all logging output.
	None Level = iota
	// Error is for failures that abort the current operation.
	Error
	// Warn is for recoverable problems worth a human's attention.
	Warn
	// Info is for high-level progress notices.
	Info
	// Debug is for detailed tracing.
	Debug
)

func (l Level) String() string {
	switch l {
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	default:
		return "NONE"
	}
}

// ParseLevel parses a level name case-insensitively. It accepts the empty
// string as None.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return None, nil
	case "ERROR":
		return Error, nil
	case "WARN", "WARNING":
		return Warn, nil
	case "INFO":
		return Info, nil
	case "DEBUG":
		return Debug, nil
	default:
		return None, fmt.Errorf("unrecognized log level: %q", s)
	}
}

// LevelFromVerbosity maps a repeated -v flag count to a Level, per the CLI
// contract: 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG, anything else (including 0) is
// None.
func LevelFromVerbosity(count int) Level {
	switch count {
	case 1:
		return Error
	case 2:
		return Warn
	case 3:
		return Info
	default:
		if count >= 4 {
			return Debug
		}
		return None
	}
}

// Logger writes prefixed messages at or below its configured Level to an
// underlying *log.Logger.
type Logger struct {
	level Level
	out   *log.Logger
}

// New returns a Logger that writes to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(w, "", log.LstdFlags),
	}
}

// NewFromEnv returns a Logger at the verbosity implied by count, unless the
// LOG environment variable is set to a level ParseLevel accepts, in which
// case it always wins -- matching the original tool's env-overrides-flags
// rule. An unrecognized LOG value is ignored.
func NewFromEnv(count int) *Logger {
	return NewFromEnvWithDefault(LevelFromVerbosity(count))
}

// NewFromEnvWithDefault returns a Logger at the given level, unless the LOG
// environment variable is set to a level ParseLevel accepts, in which case
// it always wins; an unrecognized LOG value is ignored. This lets a
// caller compute its default level from something other than a bare -v
// count (e.g. a config file's verbosity key) while still honoring the same
// unconditional env-override rule.
func NewFromEnvWithDefault(level Level) *Logger {
	if envLevel, ok := os.LookupEnv("LOG"); ok {
		if parsed, err := ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}
	return New(os.Stderr, level)
}

// Level returns the logger's configured severity threshold.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil || level > l.level || level == None {
		return
	}
	l.out.Printf("%-5s %s", level, fmt.Sprintf(format, args...))
}

// Errorf logs at Error severity.
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(Error, format, args...) }

// Warnf logs at Warn severity.
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(Warn, format, args...) }

// Infof logs at Info severity.
func (l *Logger) Infof(format string, args ...interface{}) { l.log(Info, format, args...) }

// Debugf logs at Debug severity.
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(Debug, format, args...) }
