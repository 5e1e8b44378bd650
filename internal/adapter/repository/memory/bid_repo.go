package memory

import (
	"context"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// BidRepository implements usecase.BidRepository.
type BidRepository struct {
	store *Store
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(store *Store) *BidRepository {
	return &BidRepository{store: store}
}

// Create appends a bid.
func (r *BidRepository) Create(ctx context.Context, tx usecase.Transaction, bid *domain.Bid) error {
	if err := r.store.fault("bids.Create"); err != nil {
		return err
	}

	stored := *bid
	n := len(r.store.bids)
	r.store.bids = append(r.store.bids, &stored)
	asTx(tx).onRollback(func() { r.store.bids = r.store.bids[:n] })
	return nil
}

// GetActiveByListing returns the standing bid of a listing.
func (r *BidRepository) GetActiveByListing(ctx context.Context, tx usecase.Transaction, listingID string) (*domain.Bid, error) {
	for i := len(r.store.bids) - 1; i >= 0; i-- {
		b := r.store.bids[i]
		if b.ListingID == listingID && b.IsActive() {
			out := *b
			return &out, nil
		}
	}
	return nil, domain.ErrBidNotFound
}

// UpdateStatus changes a bid's status.
func (r *BidRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.BidStatus, updatedAt time.Time) error {
	if err := r.store.fault("bids.UpdateStatus"); err != nil {
		return err
	}

	for _, b := range r.store.bids {
		if b.ID != id {
			continue
		}
		before := *b
		asTx(tx).onRollback(func() { *b = before })
		b.Status = status
		b.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrBidNotFound
}

// ListByListing returns a listing's bids in acceptance order.
func (r *BidRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	var out []*domain.Bid
	err := r.store.read(ctx, func() error {
		for _, b := range r.store.bids {
			if b.ListingID == listingID {
				cp := *b
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ListByBidder returns an account's bids, newest first.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error) {
	var out []*domain.Bid
	err := r.store.read(ctx, func() error {
		var matched []*domain.Bid
		for i := len(r.store.bids) - 1; i >= 0; i-- {
			if b := r.store.bids[i]; b.BidderID == bidderID {
				matched = append(matched, b)
			}
		}
		for _, b := range page(matched, limit, offset) {
			cp := *b
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}
