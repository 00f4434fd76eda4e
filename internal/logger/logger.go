package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// LevelTrace sits below debug. The accrual monitor ticks every second and
// cron reports each run, so that chatter is kept here by default.
const LevelTrace = slog.LevelDebug - 4

var (
	defaultLogger *slog.Logger
	cronLevel     atomic.Int64
)

func init() {
	cronLevel.Store(int64(LevelTrace))
}

// ParseLevel maps a configured level name to a slog level; unknown names
// read as info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Initialize sets up the global logger on stdout
func Initialize(level, format string) {
	InitializeWriter(os.Stdout, level, format)
}

// InitializeWriter sets up the global logger on w. format is "json" or
// "text"; anything else falls back to text.
func InitializeWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: nameTrace,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// SetCronLevel picks the level cron's routine messages are logged at
func SetCronLevel(level string) {
	cronLevel.Store(int64(ParseLevel(level)))
}

func nameTrace(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// Get returns the global logger, initializing it at info on first use
func Get() *slog.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// EnterMethod and ExitMethod trace service calls at debug
func EnterMethod(methodName string, args ...any) {
	Get().Debug("→ Method entered", withPrefix(args, "method", methodName, "event", "enter")...)
}

func ExitMethod(methodName string, args ...any) {
	Get().Debug("← Method exited", withPrefix(args, "method", methodName, "event", "exit")...)
}

func ExitMethodWithError(methodName string, err error, args ...any) {
	Get().Error("← Method exited with error", withPrefix(args, "method", methodName, "event", "exit", "error", err)...)
}

// DatabaseCall and DatabaseResult bracket one query
func DatabaseCall(operation, query string, args ...any) {
	Get().Debug("→ Database call", withPrefix(args, "operation", operation, "query", query)...)
}

func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	outcome("Database call", err, withPrefix(args, "operation", operation, "rows_affected", rowsAffected))
}

// ExternalServiceCall and ExternalServiceResult bracket one POS API request
func ExternalServiceCall(service, operation string, args ...any) {
	Get().Debug("→ External service call", withPrefix(args, "service", service, "operation", operation)...)
}

func ExternalServiceResult(service, operation string, err error, args ...any) {
	outcome("External service call", err, withPrefix(args, "service", service, "operation", operation))
}

func outcome(what string, err error, args []any) {
	if err != nil {
		Get().Error("← "+what+" failed", append(args, "error", err)...)
		return
	}
	Get().Debug("← "+what+" succeeded", args...)
}

func withPrefix(args []any, prefix ...any) []any {
	return append(prefix, args...)
}

// CronLogger adapts the global logger for robfig/cron. Routine messages go
// out at the cron level; errors always log as errors.
func CronLogger() cron.Logger {
	return cronLogger{}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	Get().Log(context.Background(), slog.Level(cronLevel.Load()), "cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	Get().Error("cron: "+msg, withPrefix(keysAndValues, "error", err)...)
}
