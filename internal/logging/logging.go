package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

type Options struct {
	Level slog.Level
	Color bool
}

// Setup installs a tint handler wrapped for context attributes as the
// default logger and returns ctx carrying it.
func Setup(ctx context.Context, w io.Writer, opts Options) context.Context {
	tintHandler := tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		AddSource:  opts.Level <= slog.LevelDebug,
		NoColor:    !opts.Color,
	})

	ctxHandler := slogctx.NewHandler(tintHandler, &slogctx.HandlerOptions{})

	logger := slog.New(ctxHandler)
	slog.SetDefault(logger)

	return slogctx.NewCtx(ctx, logger)
}

// ParseLevel accepts debug, info, warn/warning and error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
}
