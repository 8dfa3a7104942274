package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger

func Init() {
	InitWithLevel("info")
}

// InitWithLevel installs a JSON logger on stdout and makes it the slog default.
func InitWithLevel(level string) {
	log = New(NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	slog.SetDefault(log)
}

// SetLogger replaces the package logger, mostly for capturing output in tests.
func SetLogger(l *slog.Logger) {
	log = l
}

func New(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

func NewJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewJSONHandler(w, opts)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the package logger, falling back to slog's default before Init.
func L() *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

func Infof(format string, v ...any) {
	L().Info(fmt.Sprintf(format, v...))
}

func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

func Warnf(format string, v ...any) {
	L().Warn(fmt.Sprintf(format, v...))
}

func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

func Errorf(format string, v ...any) {
	L().Error(fmt.Sprintf(format, v...))
}

func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

func Debugf(format string, v ...any) {
	L().Debug(fmt.Sprintf(format, v...))
}

func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	L().Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

func WithError(err error) *slog.Logger {
	if err == nil {
		return L()
	}
	return L().With("error", err.Error())
}

func WithFields(fields map[string]interface{}) *slog.Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return L().With(args...)
}
