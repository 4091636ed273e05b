package logging

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sync/atomic"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

type ctxLoggerKey struct{}

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.New(slog.DiscardHandler))
}

// Format is the output format of the logger
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// piiPatterns are redacted from any logged string value. Raw questions and documents
// carry patient data and must not reach log sinks.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
}

// NewFilter returns the attribute filter shared by all handlers
func NewFilter() func(groups []string, a slog.Attr) slog.Attr {
	opts := []masq.Option{
		masq.WithTag("secret"),
		masq.WithFieldPrefix("secret_"),
	}
	for _, p := range piiPatterns {
		opts = append(opts, masq.WithRegex(p))
	}
	return masq.New(opts...)
}

// New creates a logger writing to w in the given format
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	filter := NewFilter()

	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		}))

	default:
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
			clog.WithSource(true),
			clog.WithColor(true),
		))
	}
}

// Default returns the process-wide logger
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *slog.Logger) {
	if logger == nil {
		return
	}
	defaultLogger.Store(logger)
}

// With returns a context carrying logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger bound to ctx, or the default logger
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}
