package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/usecase"
)

// LifecycleService settles due listings.
type LifecycleService interface {
	SweepExpiredListings(ctx context.Context, now time.Time, limit int) ([]usecase.SettlementResult, error)
}

// ReconciliationService audits balances and auctions.
type ReconciliationService interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler serves scheduler and audit endpoints.
type AdminHandler struct {
	lifecycleUC      LifecycleService
	reconciliationUC ReconciliationService
	clock            usecase.Clock
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(lifecycleUC LifecycleService, reconciliationUC ReconciliationService, clock usecase.Clock) *AdminHandler {
	return &AdminHandler{
		lifecycleUC:      lifecycleUC,
		reconciliationUC: reconciliationUC,
		clock:            clock,
	}
}

// Sweep settles every listing past its deadline.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req dto.SweepRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	results, err := h.lifecycleUC.SweepExpiredListings(r.Context(), h.clock.Now(), req.Limit)
	if err != nil {
		writeDomainError(w, r, "sweep failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepFromUseCase(results))
}

// Reconcile checks every wallet against its log. An inconsistent ledger
// answers 409.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to reconcile", err)
		return
	}

	status := http.StatusOK
	if !report.IsConsistent() {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ReconciliationFromUseCase(report))
}
