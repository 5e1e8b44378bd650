package handler

import (
	"context"
	"net/http"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/usecase"
)

// PlatformService sells button packages.
type PlatformService interface {
	Packages() []usecase.ButtonPackage
	BuyPackage(ctx context.Context, accountID string, buttons int64, paymentReference string) (*usecase.LedgerResult, error)
}

// PlatformHandler serves the platform store.
type PlatformHandler struct {
	platformUC PlatformService
}

// NewPlatformHandler creates a new PlatformHandler.
func NewPlatformHandler(platformUC PlatformService) *PlatformHandler {
	return &PlatformHandler{platformUC: platformUC}
}

// Packages lists the price list.
func (h *PlatformHandler) Packages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.PackagesFromUseCase(h.platformUC.Packages()))
}

// Purchase grants the caller a package they have paid for.
func (h *PlatformHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeDomainError(w, r, "cannot purchase", err)
		return
	}

	var req dto.PurchasePackageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.platformUC.BuyPackage(r.Context(), p.AccountID, req.Buttons, req.PaymentReference)
	if err != nil {
		writeDomainError(w, r, "purchase failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerResultFromUseCase(result))
}
