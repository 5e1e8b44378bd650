package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/auth"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

const (
	// AccountIDHeader names the caller when token auth is disabled.
	AccountIDHeader = "X-Account-ID"
	// AccountRoleHeader optionally carries the caller's role when token auth is disabled.
	AccountRoleHeader = "X-Account-Role"
)

// Authenticate resolves the caller and stores it with domain.WithPrincipal.
//
// With a JWT manager the Authorization header must carry a bearer token.
// Without one the identity provider is trusted to set X-Account-ID and,
// for admins, X-Account-Role.
func Authenticate(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				principal domain.Principal
				err       error
			)
			if jwtManager != nil {
				principal, err = fromBearer(r, jwtManager)
			} else {
				principal, err = fromHeaders(r)
			}

			if err != nil {
				if m != nil {
					m.AuthFailures.WithLabelValues(failureReason(err)).Inc()
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}

			annotateCaller(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), principal)))
		})
	}
}

func fromBearer(r *http.Request, jwtManager *auth.JWTManager) (domain.Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	return jwtManager.Verify(token)
}

func fromHeaders(r *http.Request) (domain.Principal, error) {
	accountID := r.Header.Get(AccountIDHeader)
	if accountID == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if err := domain.ValidateAccountID(accountID); err != nil {
		return domain.Principal{}, err
	}

	role := domain.RoleMember
	if raw := r.Header.Get(AccountRoleHeader); raw != "" {
		role = domain.Role(strings.ToLower(raw))
		if !role.IsValid() {
			return domain.Principal{}, domain.ErrInsufficientRole
		}
	}

	return domain.Principal{AccountID: accountID, Role: role}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "missing_credentials"
	default:
		return "invalid_identity"
	}
}

// RequireAdmin rejects callers whose role cannot move currency directly.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", domain.ErrUnauthorized.Error())
			return
		}
		if !p.Role.CanAdminister() {
			writeJSONError(w, http.StatusForbidden, "forbidden", domain.ErrInsufficientRole.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "message": details})
}
