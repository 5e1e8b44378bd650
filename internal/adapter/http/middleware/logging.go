package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/logger"
)

type requestLogKey struct{}

// LoggingMiddleware writes one line per request. Handlers reach the same
// request logger through zerolog.Ctx, so fields added after authentication
// show up in both.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Wrap wraps an http.Handler with logging.
func (m *LoggingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logger.WithContext(r.Context(), m.logger).WithContext(r.Context())
		reqLogger := zerolog.Ctx(ctx)
		ctx = context.WithValue(ctx, requestLogKey{}, reqLogger)

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		event := reqLogger.Info()
		switch {
		case rec.statusCode >= http.StatusInternalServerError:
			event = reqLogger.Error()
		case rec.statusCode == http.StatusTooManyRequests, rec.statusCode == http.StatusUnauthorized:
			event = reqLogger.Warn()
		}

		if route := routePattern(r); route != "unmatched" {
			event = event.Str("route", route)
		}
		if r.Header.Get(IdempotencyKeyHeader) != "" {
			event = event.Bool("idempotent", true)
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.statusCode).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}

// annotateCaller tags the request log with the authenticated caller.
// Outside LoggingMiddleware it does nothing.
func annotateCaller(ctx context.Context, p domain.Principal) {
	l, ok := ctx.Value(requestLogKey{}).(*zerolog.Logger)
	if !ok {
		return
	}
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("account_id", p.AccountID).Str("role", string(p.Role))
	})
}

type statusRecorder struct {
	http.ResponseWriter

	statusCode  int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
