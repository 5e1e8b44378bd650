package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it. Server faults are
// logged and their details withheld.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg(message)
		writeError(w, status, message, http.StatusText(status))
		return
	}
	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole),
		errors.Is(err, domain.ErrNotListingOwner):
		return http.StatusForbidden
	case domain.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrListingNotActive),
		errors.Is(err, domain.ErrListingHasBids):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrSelfBid):
		return http.StatusUnprocessableEntity
	case domain.IsValidationError(err),
		errors.Is(err, usecase.ErrUnknownPackage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransientStore),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes and validates a request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	if err := dto.Validate(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation failed",
			Details: dto.ValidationDetails(err),
		})
		return false
	}

	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseCurrencyQuery reads ?currency=, defaulting to def. An empty def
// means both wallets.
func parseCurrencyQuery(r *http.Request, def domain.Currency) (domain.Currency, error) {
	val := r.URL.Query().Get("currency")
	if val == "" {
		return def, nil
	}
	return domain.ParseCurrency(val)
}

// caller returns the authenticated principal or domain.ErrUnauthorized.
func caller(r *http.Request) (domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}

// authorizeAccount lets an account act on itself, and admins on anyone.
func authorizeAccount(r *http.Request, accountID string) error {
	p, err := caller(r)
	if err != nil {
		return err
	}
	if p.AccountID != accountID && !p.Role.CanAdminister() {
		return fmt.Errorf("%w: account %s", domain.ErrInsufficientRole, accountID)
	}
	return nil
}
