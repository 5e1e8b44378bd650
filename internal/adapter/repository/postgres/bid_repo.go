package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/postgres/generated"
	"github.com/iho/buttonmarket/internal/usecase"
)

// BidRepository implements usecase.BidRepository.
type BidRepository struct {
	queries *generated.Queries
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db generated.DBTX) *BidRepository {
	return &BidRepository{queries: generated.New(db)}
}

// Create inserts a bid. The partial unique index on active bids rejects a
// second standing bid for the same listing.
func (r *BidRepository) Create(ctx context.Context, tx usecase.Transaction, bid *domain.Bid) error {
	return txQueries(tx).CreateBid(ctx, generated.CreateBidParams{
		ID:        bid.ID,
		ListingID: bid.ListingID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Charged:   bid.Charged,
		Status:    string(bid.Status),
		CreatedAt: timeToPgTimestamptz(bid.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(bid.UpdatedAt),
	})
}

// GetActiveByListing returns the standing bid of a listing.
func (r *BidRepository) GetActiveByListing(ctx context.Context, tx usecase.Transaction, listingID string) (*domain.Bid, error) {
	row, err := txQueries(tx).GetActiveBidByListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}

		return nil, err
	}

	return rowToBid(row), nil
}

// UpdateStatus changes a bid's status.
func (r *BidRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.BidStatus, updatedAt time.Time) error {
	n, err := txQueries(tx).UpdateBidStatus(ctx, generated.UpdateBidStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrBidNotFound
	}

	return nil
}

// ListByListing returns a listing's bids in acceptance order.
func (r *BidRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	rows, err := r.queries.ListBidsByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	return rowsToBids(rows), nil
}

// ListByBidder returns an account's bids, newest first.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error) {
	rows, err := r.queries.ListBidsByBidder(ctx, generated.ListBidsByBidderParams{
		BidderID: bidderID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToBids(rows), nil
}

func rowsToBids(rows []generated.Bid) []*domain.Bid {
	bids := make([]*domain.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, rowToBid(row))
	}
	return bids
}

func rowToBid(row generated.Bid) *domain.Bid {
	return &domain.Bid{
		ID:        row.ID,
		ListingID: row.ListingID,
		BidderID:  row.BidderID,
		Amount:    row.Amount,
		Charged:   row.Charged,
		Status:    domain.BidStatus(row.Status),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
