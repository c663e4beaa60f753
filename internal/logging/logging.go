// Package logging configures the process logger and logs gateway lifecycle
// events published on the event bus.
package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	eventbus "github.com/hanpama/pokegraph/internal/eventbus"
	events "github.com/hanpama/pokegraph/internal/events"
	reqid "github.com/hanpama/pokegraph/internal/reqid"
)

// Config selects the handler format and level.
type Config struct {
	JSON  bool
	Debug bool
}

// New builds a logger writing to w.
func New(w io.Writer, cfg Config) *slog.Logger {
	opts := slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Debug {
		opts = slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}
	}
	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, &opts)
	} else {
		h = slog.NewTextHandler(w, &opts)
	}
	return slog.New(h)
}

// Configure installs a logger built from cfg as the slog default.
func Configure(w io.Writer, cfg Config) *slog.Logger {
	logger := New(w, cfg)
	slog.SetDefault(logger)
	logger.Debug("debug logging enabled")
	return logger
}

// Subscribe logs HTTP, GraphQL and upstream events from the global bus.
// Finished requests and operations log at info, upstream calls at debug,
// failures at warn.
func Subscribe(logger *slog.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			level := slog.LevelInfo
			if e.Status >= 500 {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "http request",
				requestID(ctx),
				slog.String("method", e.Request.Method),
				slog.String("path", e.Request.URL.Path),
				slog.String("remote", e.Request.RemoteAddr),
				slog.Int("status", e.Status),
				durationAttr(e.Duration),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			level := slog.LevelInfo
			if e.Failed() {
				level = slog.LevelWarn
			}
			attrs := []any{
				requestID(ctx),
				slog.String("operation", e.OperationName),
				slog.String("type", e.OperationType),
				slog.Int("errors", len(e.Errors)),
				durationAttr(e.Duration),
			}
			if e.Failed() {
				attrs = append(attrs, slog.String("first_error", e.Errors[0].Error()))
			}
			logger.Log(ctx, level, "graphql operation", attrs...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.UpstreamFinish) {
			attrs := []any{
				requestID(ctx),
				slog.String("call", e.ID),
				slog.String("method", e.Method),
				slog.String("url", e.URL),
				slog.Int("status", e.StatusCode),
				durationAttr(e.Duration),
			}
			if e.Err != nil {
				logger.Log(ctx, slog.LevelWarn, "upstream call failed", append(attrs, slog.Any("err", e.Err))...)
				return
			}
			logger.Log(ctx, slog.LevelDebug, "upstream call", attrs...)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func requestID(ctx context.Context) slog.Attr {
	rid, _ := reqid.FromContext(ctx)
	return slog.String("rid", rid)
}

func durationAttr(d time.Duration) slog.Attr {
	return slog.Float64("ms", float64(d.Microseconds())/1000)
}
