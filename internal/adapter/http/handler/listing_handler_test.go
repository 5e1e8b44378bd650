package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

type listingServiceStub struct {
	createItemFn func(ctx context.Context, input usecase.CreateItemListingInput) (*domain.Listing, error)
	createLotFn  func(ctx context.Context, input usecase.CreateButtonLotInput) (*domain.Listing, error)
	cancelFn     func(ctx context.Context, ownerID, listingID string) (*domain.Listing, error)
	getFn        func(ctx context.Context, id string) (*domain.Listing, error)
	listFn       func(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	bidsFn       func(ctx context.Context, listingID string) ([]*domain.Bid, error)
	byBidderFn   func(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error)
}

func (s *listingServiceStub) CreateItemListing(ctx context.Context, input usecase.CreateItemListingInput) (*domain.Listing, error) {
	return s.createItemFn(ctx, input)
}

func (s *listingServiceStub) CreateButtonLot(ctx context.Context, input usecase.CreateButtonLotInput) (*domain.Listing, error) {
	return s.createLotFn(ctx, input)
}

func (s *listingServiceStub) CancelListing(ctx context.Context, ownerID, listingID string) (*domain.Listing, error) {
	return s.cancelFn(ctx, ownerID, listingID)
}

func (s *listingServiceStub) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.getFn(ctx, id)
}

func (s *listingServiceStub) ListActiveListings(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	return s.listFn(ctx, filter)
}

func (s *listingServiceStub) ListBids(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	return s.bidsFn(ctx, listingID)
}

func (s *listingServiceStub) ListBidsByBidder(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error) {
	return s.byBidderFn(ctx, bidderID, limit, offset)
}

var listingDeadline = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func itemListing(id, owner string) *domain.Listing {
	return &domain.Listing{
		ID:           id,
		OwnerID:      owner,
		Kind:         domain.ListingKindItem,
		Asset:        domain.Asset{Title: "Denim jacket"},
		ReservePrice: 10,
		Status:       domain.ListingStatusActive,
		Deadline:     listingDeadline,
	}
}

func TestListingHandler_CreateItem(t *testing.T) {
	var captured usecase.CreateItemListingInput
	h := NewListingHandler(&listingServiceStub{
		createItemFn: func(ctx context.Context, input usecase.CreateItemListingInput) (*domain.Listing, error) {
			captured = input
			return itemListing("lst-1", input.OwnerID), nil
		},
	})

	body := dto.CreateItemListingRequest{Title: "Denim jacket", Category: "outerwear", ReservePrice: 10, Duration: "24h"}
	rec := httptest.NewRecorder()
	h.CreateItem(rec, newRequest(t, http.MethodPost, "/listings/items", body, nil, member("alice")))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", captured.OwnerID)
	assert.Equal(t, 24*time.Hour, captured.Duration)

	var resp dto.ListingResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "lst-1", resp.ID)
	assert.Equal(t, "10 buttons", resp.ReservePrice.Formatted)
}

func TestListingHandler_CreateItem_Validation(t *testing.T) {
	h := NewListingHandler(&listingServiceStub{})

	rec := httptest.NewRecorder()
	h.CreateItem(rec, newRequest(t, http.MethodPost, "/listings/items", dto.CreateItemListingRequest{ReservePrice: 10}, nil, member("alice")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Details, "Title")

	rec = httptest.NewRecorder()
	h.CreateItem(rec, newRequest(t, http.MethodPost, "/listings/items", dto.CreateItemListingRequest{Title: "x", ReservePrice: 10}, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListingHandler_CreateButtonLot_InsufficientFunds(t *testing.T) {
	var captured usecase.CreateButtonLotInput
	h := NewListingHandler(&listingServiceStub{
		createLotFn: func(ctx context.Context, input usecase.CreateButtonLotInput) (*domain.Listing, error) {
			captured = input
			return nil, domain.ErrInsufficientFunds
		},
	})

	body := dto.CreateButtonLotRequest{ButtonAmount: 500, Reserve: decimal.RequireFromString("4.99")}
	rec := httptest.NewRecorder()
	h.CreateButtonLot(rec, newRequest(t, http.MethodPost, "/listings/button-lots", body, nil, member("alice")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, int64(499), captured.ReserveCents)
}

func TestListingHandler_List(t *testing.T) {
	var captured domain.ListingFilter
	h := NewListingHandler(&listingServiceStub{
		listFn: func(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
			captured = filter
			return []*domain.Listing{itemListing("lst-1", "alice")}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(t, http.MethodGet, "/listings?kind=item&owner=alice&limit=5&offset=10", nil, nil, member("bob")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ListingFilter{Kind: domain.ListingKindItem, OwnerID: "alice", Limit: 5, Offset: 10}, captured)

	var resp []dto.ListingResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp, 1)
}

func TestListingHandler_GetNotFound(t *testing.T) {
	h := NewListingHandler(&listingServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return nil, domain.ErrListingNotFound
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(t, http.MethodGet, "/listings/missing", nil, map[string]string{"id": "missing"}, member("bob")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingHandler_Bids(t *testing.T) {
	h := NewListingHandler(&listingServiceStub{
		bidsFn: func(ctx context.Context, listingID string) ([]*domain.Bid, error) {
			return []*domain.Bid{
				{ID: "bid-1", ListingID: listingID, BidderID: "bob", Amount: 12, Status: domain.BidStatusOutbid},
				{ID: "bid-2", ListingID: listingID, BidderID: "carol", Amount: 15, Status: domain.BidStatusActive},
			}, nil
		},
		byBidderFn: func(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error) {
			return []*domain.Bid{{ID: "bid-2", BidderID: bidderID}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Bids(rec, newRequest(t, http.MethodGet, "/listings/lst-1/bids", nil, map[string]string{"id": "lst-1"}, member("bob")))
	require.Equal(t, http.StatusOK, rec.Code)
	var bids []dto.BidResponse
	decodeBody(t, rec, &bids)
	require.Len(t, bids, 2)
	assert.Equal(t, "outbid", bids[0].Status)

	rec = httptest.NewRecorder()
	h.BidsByBidder(rec, newRequest(t, http.MethodGet, "/accounts/carol/bids", nil, map[string]string{"id": "carol"}, member("carol")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.BidsByBidder(rec, newRequest(t, http.MethodGet, "/accounts/carol/bids", nil, map[string]string{"id": "carol"}, member("bob")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListingHandler_Cancel(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"cancelled", nil, http.StatusOK},
		{"not owner", domain.ErrNotListingOwner, http.StatusForbidden},
		{"has bids", domain.ErrListingHasBids, http.StatusConflict},
		{"closed", domain.ErrListingNotActive, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOwner string
			h := NewListingHandler(&listingServiceStub{
				cancelFn: func(ctx context.Context, ownerID, listingID string) (*domain.Listing, error) {
					gotOwner = ownerID
					if tt.err != nil {
						return nil, tt.err
					}
					l := itemListing(listingID, ownerID)
					l.Status = domain.ListingStatusCancelled
					return l, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Cancel(rec, newRequest(t, http.MethodPost, "/listings/lst-1/cancel", nil, map[string]string{"id": "lst-1"}, member("alice")))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "alice", gotOwner)
		})
	}
}
