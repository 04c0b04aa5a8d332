package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/technotes/apiserver/internal/logging"
)

// accessLogFormatter writes one structured line per request through the
// server logger, so access lines follow LOG_FORMAT and LOG_LEVEL.
type accessLogFormatter struct {
	logger logging.Logger
}

func newAccessLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&accessLogFormatter{logger: logger})
}

func (f *accessLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &accessLogEntry{
		ctx: r.Context(),
		logger: f.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type accessLogEntry struct {
	ctx    context.Context
	logger logging.Logger
}

func (e *accessLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	args := []any{"status", status, "bytes", bytes, "duration", elapsed}
	if status >= http.StatusInternalServerError {
		e.logger.Error(e.ctx, "http request", args...)
		return
	}
	e.logger.Info(e.ctx, "http request", args...)
}

func (e *accessLogEntry) Panic(v any, stack []byte) {
	e.logger.Error(e.ctx, "http handler panic", "panic", v, "stack", string(stack))
}
