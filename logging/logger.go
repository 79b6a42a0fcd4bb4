// Package logging builds the process-wide structured logger. Nothing
// in the teacher's own files reaches for a logging library (bare
// log.Printf throughout), but github.com/lmittmann/tint is already an
// indirect dependency pulled in by the wails v3 toolchain and is the
// pack's demonstrated idiom for leveled, colorized console logging
// over log/slog (also present indirectly via landaiqing-voidraft).
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures New.
type Options struct {
	// Level is the minimum level that gets logged. Defaults to Info.
	Level slog.Level
	// Debug enables source file:line annotation on every record.
	Debug bool
}

// New builds a *slog.Logger writing tint-formatted lines to stderr —
// the hook thread and worker goroutines all log through this one
// instance.
func New(opts Options) *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      opts.Level,
		AddSource:  opts.Debug,
		TimeFormat: time.Kitchen,
	})
	return slog.New(handler)
}

// WithContext attaches fields that should appear on every subsequent
// record logged through the returned context-scoped logger, and
// stores that logger in the returned context for FromContext.
func WithContext(ctx context.Context, log *slog.Logger, args ...any) (context.Context, *slog.Logger) {
	scoped := log.With(args...)
	return context.WithValue(ctx, loggerKey{}, scoped), scoped
}

type loggerKey struct{}

// FromContext returns the logger attached by WithContext, or fallback
// if none was attached.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	return fallback
}
