package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/buttonmarket/internal/domain"
)

// newRequest builds a request with an optional JSON body, chi URL params and caller.
func newRequest(t *testing.T, method, target string, body any, params map[string]string, p *domain.Principal) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)

	if p != nil {
		ctx = domain.WithPrincipal(ctx, *p)
	}

	return req.WithContext(ctx)
}

func member(id string) *domain.Principal {
	return &domain.Principal{AccountID: id, Role: domain.RoleMember}
}

func admin() *domain.Principal {
	return &domain.Principal{AccountID: "ops", Role: domain.RoleAdmin}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
