/*
PURPOSE:
  Provides a structured logger for npu-bench.
  Wraps zerolog behind a small key/value API.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.
  - Operator is warned when a question's timings cannot be extracted.

  Implementation-discovered:
  - Logs go to stderr so stdout stays the progress/summary channel.
  - JSON output for unattended runs on the bench host.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

IMPLEMENTATION RULES:
  - Use github.com/rs/zerolog.
  - Call sites keep the ("message", "key", value, ...) shape.

USAGE:
  output.Setup("debug", "json")
  output.Logger.Info("message", "key", "value")
*/

package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger.
var Logger *Log

// Log is a thin key/value front end over zerolog.
type Log struct {
	z zerolog.Logger
}

func init() {
	Logger = New(os.Stderr, "info", "console")
}

// New builds a logger writing to w.
// format "json" emits JSON lines, anything else a human console format.
func New(w io.Writer, level, format string) *Log {
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &Log{z: z}
}

// Setup replaces the process-wide logger.
func Setup(level, format string) {
	Logger = New(os.Stderr, level, format)
}

// SetLogger allows overriding the default logger (e.g. for testing).
func SetLogger(l *Log) {
	Logger = l
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a child logger carrying the given key/value pairs on every event.
func (l *Log) With(args ...interface{}) *Log {
	ctx := l.z.With()
	for i := 0; i+1 < len(args); i += 2 {
		ctx = ctx.Interface(key(args[i]), args[i+1])
	}
	return &Log{z: ctx.Logger()}
}

// Debug logs at Debug level with variadic key-value pairs.
func (l *Log) Debug(msg string, args ...interface{}) {
	emit(l.z.Debug(), msg, args)
}

// Info logs at Info level with variadic key-value pairs.
func (l *Log) Info(msg string, args ...interface{}) {
	emit(l.z.Info(), msg, args)
}

// Warn logs at Warn level with variadic key-value pairs.
func (l *Log) Warn(msg string, args ...interface{}) {
	emit(l.z.Warn(), msg, args)
}

// Error logs at Error level with variadic key-value pairs.
func (l *Log) Error(msg string, args ...interface{}) {
	emit(l.z.Error(), msg, args)
}

func emit(e *zerolog.Event, msg string, args []interface{}) {
	for i := 0; i+1 < len(args); i += 2 {
		if err, ok := args[i+1].(error); ok {
			e = e.AnErr(key(args[i]), err)
			continue
		}
		e = e.Interface(key(args[i]), args[i+1])
	}
	e.Msg(msg)
}

func key(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
