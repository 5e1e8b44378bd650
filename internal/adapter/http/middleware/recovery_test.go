package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// logLines decodes newline-delimited zerolog output keyed by message.
func logLines(t *testing.T, buf *bytes.Buffer) map[string]map[string]any {
	t.Helper()

	lines := map[string]map[string]any{}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines[line["message"].(string)] = line
	}
	return lines
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(NewLoggingMiddleware(zerolog.New(&buf)).Wrap)
	r.Use(Recovery(m))
	r.With(Authenticate(nil, nil)).Post("/listings/{id}/bids", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/listings/lst-1/bids", nil)
	req.Header.Set(AccountIDHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPPanics.WithLabelValues("/listings/{id}/bids")))

	lines := logLines(t, &buf)
	require.Contains(t, lines, "panic recovered")
	assert.Equal(t, "boom", lines["panic recovered"]["panic"])
	assert.Equal(t, "alice", lines["panic recovered"]["account_id"])

	completed := lines["request completed"]
	require.NotNil(t, completed)
	assert.Equal(t, "error", completed["level"])
	assert.EqualValues(t, 500, completed["status"])
	assert.Equal(t, "alice", completed["account_id"])
	assert.Equal(t, "member", completed["role"])
	assert.Equal(t, "/listings/{id}/bids", completed["route"])
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	h := Recovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecovery_PanicAfterWriteAborts(t *testing.T) {
	h := Recovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		panic("late")
	}))

	rr := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, "partial", rr.Body.String())
}

func TestLogging_AnonymousRequest(t *testing.T) {
	var buf bytes.Buffer
	h := NewLoggingMiddleware(zerolog.New(&buf)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("handler line")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil)
	req.Header.Set(IdempotencyKeyHeader, "k-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	require.Contains(t, lines, "handler line")

	completed := lines["request completed"]
	require.NotNil(t, completed)
	assert.Equal(t, "warn", completed["level"])
	assert.EqualValues(t, 429, completed["status"])
	assert.EqualValues(t, len("slow down"), completed["bytes"])
	assert.Equal(t, true, completed["idempotent"])
	assert.NotContains(t, completed, "account_id")
}
