package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// LedgerService defines the ledger primitives exposed to admins.
type LedgerService interface {
	Grant(ctx context.Context, input usecase.LedgerInput) (*usecase.LedgerResult, error)
	Deduct(ctx context.Context, input usecase.LedgerInput) (*usecase.LedgerResult, error)
	Refund(ctx context.Context, input usecase.LedgerInput) (*usecase.LedgerResult, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

// LedgerHandler handles direct ledger movements and the activity feed.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Grant credits an account.
func (h *LedgerHandler) Grant(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "grant", h.ledgerUC.Grant)
}

// Deduct debits an account.
func (h *LedgerHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "deduct", h.ledgerUC.Deduct)
}

// Refund credits an account back.
func (h *LedgerHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "refund", h.ledgerUC.Refund)
}

func (h *LedgerHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	apply func(context.Context, usecase.LedgerInput) (*usecase.LedgerResult, error),
) {
	var req dto.LedgerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "invalid "+operation, err)
		return
	}

	result, err := apply(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, operation+" failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerResultFromUseCase(result))
}

// Deposit credits a USD wallet from an external payment.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "invalid deposit", err)
		return
	}

	result, err := h.ledgerUC.Grant(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "deposit failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerResultFromUseCase(result))
}

// Activity returns the most recent transactions across all accounts.
func (h *LedgerHandler) Activity(w http.ResponseWriter, r *http.Request) {
	txns, err := h.ledgerUC.ListRecentTransactions(r.Context(), parseIntQuery(r, "limit", domain.DefaultPageSize))
	if err != nil {
		writeDomainError(w, r, "failed to list activity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Count:        len(txns),
	})
}
