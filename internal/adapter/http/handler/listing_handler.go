package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// ListingService defines the behavior needed by ListingHandler.
type ListingService interface {
	CreateItemListing(ctx context.Context, input usecase.CreateItemListingInput) (*domain.Listing, error)
	CreateButtonLot(ctx context.Context, input usecase.CreateButtonLotInput) (*domain.Listing, error)
	CancelListing(ctx context.Context, ownerID, listingID string) (*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListActiveListings(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	ListBids(ctx context.Context, listingID string) ([]*domain.Bid, error)
	ListBidsByBidder(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error)
}

// ListingHandler handles listing-related HTTP requests.
type ListingHandler struct {
	listingUC ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingUC ListingService) *ListingHandler {
	return &ListingHandler{listingUC: listingUC}
}

// CreateItem lists an item for buttons on behalf of the caller.
func (h *ListingHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeDomainError(w, r, "cannot create listing", err)
		return
	}

	var req dto.CreateItemListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(p.AccountID)
	if err != nil {
		writeDomainError(w, r, "invalid listing", err)
		return
	}

	listing, err := h.listingUC.CreateItemListing(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ListingFromDomain(listing))
}

// CreateButtonLot auctions the caller's buttons for cash.
func (h *ListingHandler) CreateButtonLot(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeDomainError(w, r, "cannot create listing", err)
		return
	}

	var req dto.CreateButtonLotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(p.AccountID)
	if err != nil {
		writeDomainError(w, r, "invalid listing", err)
		return
	}

	listing, err := h.listingUC.CreateButtonLot(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ListingFromDomain(listing))
}

// List lists active listings, soonest deadline first.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listings, err := h.listingUC.ListActiveListings(r.Context(), domain.ListingFilter{
		Kind:    domain.ListingKind(q.Get("kind")),
		OwnerID: q.Get("owner"),
		Limit:   parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list listings", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingsFromDomain(listings))
}

// Get retrieves a listing by ID.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingUC.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get listing", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingFromDomain(listing))
}

// Bids lists a listing's bids in acceptance order.
func (h *ListingHandler) Bids(w http.ResponseWriter, r *http.Request) {
	bids, err := h.listingUC.ListBids(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to list bids", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BidsFromDomain(bids))
}

// BidsByBidder lists an account's bids, newest first.
func (h *ListingHandler) BidsByBidder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorizeAccount(r, id); err != nil {
		writeDomainError(w, r, "cannot read bids", err)
		return
	}

	bids, err := h.listingUC.ListBidsByBidder(r.Context(), id,
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list bids", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BidsFromDomain(bids))
}

// Cancel withdraws the caller's listing.
func (h *ListingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeDomainError(w, r, "cannot cancel listing", err)
		return
	}

	listing, err := h.listingUC.CancelListing(r.Context(), p.AccountID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to cancel listing", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingFromDomain(listing))
}
