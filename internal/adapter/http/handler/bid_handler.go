package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// BidService places bids.
type BidService interface {
	PlaceBid(ctx context.Context, input usecase.PlaceBidInput) (*usecase.PlaceBidResult, error)
}

// ListingReader resolves the listing a bid amount is denominated against.
type ListingReader interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
}

// BidHandler handles bid placement.
type BidHandler struct {
	bidUC    BidService
	listings ListingReader
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(bidUC BidService, listings ListingReader) *BidHandler {
	return &BidHandler{bidUC: bidUC, listings: listings}
}

// Place bids on a listing as the caller.
func (h *BidHandler) Place(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeDomainError(w, r, "cannot bid", err)
		return
	}

	var req dto.PlaceBidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	listing, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get listing", err)
		return
	}

	input, err := req.ToUseCaseInput(p.AccountID, listing)
	if err != nil {
		writeDomainError(w, r, "invalid bid", err)
		return
	}

	result, err := h.bidUC.PlaceBid(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "bid rejected", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBidFromUseCase(result))
}
