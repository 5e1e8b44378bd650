package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// Recovery turns a handler panic into a 500 and logs it with the request
// logger, which carries the request id and caller. A panic after the
// response has started only closes the connection.
func Recovery(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				route := routePattern(r)
				if m != nil {
					m.HTTPPanics.WithLabelValues(route).Inc()
				}

				zerolog.Ctx(r.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Str("route", route).
					Bool("response_started", rec.wroteHeader).
					Msg("panic recovered")

				if rec.wroteHeader {
					panic(http.ErrAbortHandler)
				}
				writeJSONError(w, http.StatusInternalServerError, "internal server error", "")
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
