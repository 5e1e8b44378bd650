package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, accountID string, initialGrant int64) (*usecase.LedgerResult, error)
	GetAccountBalance(ctx context.Context, accountID string, currency domain.Currency) (*domain.Account, error)
	GetBalances(ctx context.Context, accountID string) ([]*domain.Account, error)
	GetTransactionLog(ctx context.Context, accountID string, currency domain.Currency, limit, offset int) ([]*domain.Transaction, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC    AccountService
	initialGrant int64
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, initialGrant int64) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, initialGrant: initialGrant}
}

// Open creates the account's button wallet with its onboarding grant.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorizeAccount(r, id); err != nil {
		writeDomainError(w, r, "cannot open account", err)
		return
	}

	req := dto.OpenAccountRequest{}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	grant := h.initialGrant
	if req.InitialGrant != nil {
		// Only admins choose the grant.
		if p, _ := caller(r); !p.Role.CanAdminister() {
			writeDomainError(w, r, "cannot open account", domain.ErrInsufficientRole)
			return
		}
		grant = *req.InitialGrant
	}

	result, err := h.accountUC.OpenAccount(r.Context(), id, grant)
	if err != nil {
		writeDomainError(w, r, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerResultFromUseCase(result))
}

// Balance returns one wallet, or every wallet when no currency is given.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorizeAccount(r, id); err != nil {
		writeDomainError(w, r, "cannot read balance", err)
		return
	}

	currency, err := parseCurrencyQuery(r, "")
	if err != nil {
		writeDomainError(w, r, "invalid currency", err)
		return
	}

	if currency == "" {
		accounts, err := h.accountUC.GetBalances(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, "failed to get balances", err)
			return
		}
		writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
		return
	}

	account, err := h.accountUC.GetAccountBalance(r.Context(), id, currency)
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Transactions returns the account's log, newest first.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorizeAccount(r, id); err != nil {
		writeDomainError(w, r, "cannot read transactions", err)
		return
	}

	currency, err := parseCurrencyQuery(r, "")
	if err != nil {
		writeDomainError(w, r, "invalid currency", err)
		return
	}

	txns, err := h.accountUC.GetTransactionLog(r.Context(), id, currency,
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Count:        len(txns),
	})
}
