package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"media-scribe/internal/logger"
	"media-scribe/internal/metrics"
)

// requestLogger logs each request through slog, records HTTP metrics and
// puts a request-scoped logger on the context.
func requestLogger(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := log.With(slog.String("request_id", middleware.GetReqID(r.Context())))
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			m.RecordHTTPRequest(r.Method, route, status, elapsed.Seconds())
			reqLog.Debug("http request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", elapsed))
		})
	}
}
