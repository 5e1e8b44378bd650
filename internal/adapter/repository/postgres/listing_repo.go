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

// ListingRepository implements usecase.ListingRepository.
type ListingRepository struct {
	queries *generated.Queries
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db generated.DBTX) *ListingRepository {
	return &ListingRepository{queries: generated.New(db)}
}

// Create inserts a listing.
func (r *ListingRepository) Create(ctx context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	return txQueries(tx).CreateListing(ctx, generated.CreateListingParams{
		ID:              listing.ID,
		OwnerID:         listing.OwnerID,
		Kind:            string(listing.Kind),
		Title:           listing.Asset.Title,
		Category:        listing.Asset.Category,
		ImageUrl:        listing.Asset.ImageURL,
		ButtonAmount:    listing.Asset.ButtonAmount,
		ReservePrice:    listing.ReservePrice,
		HighestAmount:   listing.HighestAmount,
		HighestBidderID: stringPtrToPgText(listing.HighestBidderID),
		BidCount:        int32(listing.BidCount),
		Status:          string(listing.Status),
		Deadline:        timeToPgTimestamptz(listing.Deadline),
		CreatedAt:       timeToPgTimestamptz(listing.CreatedAt),
		UpdatedAt:       timeToPgTimestamptz(listing.UpdatedAt),
		SettledAt:       timePtrToPgTimestamptz(listing.SettledAt),
	})
}

// GetByID retrieves a listing.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row, err := r.queries.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}

		return nil, err
	}

	return rowToListing(row), nil
}

// GetByIDForUpdate retrieves a listing with a FOR UPDATE lock. All bids on
// one listing serialize on this row.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Listing, error) {
	row, err := txQueries(tx).GetListingForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}

		return nil, err
	}

	return rowToListing(row), nil
}

// Update persists the mutable auction fields.
func (r *ListingRepository) Update(ctx context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	n, err := txQueries(tx).UpdateListing(ctx, generated.UpdateListingParams{
		ID:              listing.ID,
		HighestAmount:   listing.HighestAmount,
		HighestBidderID: stringPtrToPgText(listing.HighestBidderID),
		BidCount:        int32(listing.BidCount),
		Status:          string(listing.Status),
		UpdatedAt:       timeToPgTimestamptz(listing.UpdatedAt),
		SettledAt:       timePtrToPgTimestamptz(listing.SettledAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrListingNotFound
	}

	return nil
}

// ListActive returns open listings, soonest deadline first.
func (r *ListingRepository) ListActive(ctx context.Context, filter domain.ListingFilter, now time.Time) ([]*domain.Listing, error) {
	rows, err := r.queries.ListActiveListings(ctx, generated.ListActiveListingsParams{
		Now:     timeToPgTimestamptz(now),
		Kind:    optionalText(string(filter.Kind)),
		OwnerID: optionalText(filter.OwnerID),
		Limit:   int32(filter.Limit),
		Offset:  int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToListings(rows), nil
}

// ListDue returns ids of active listings whose deadline has passed.
func (r *ListingRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return r.queries.ListDueListings(ctx, generated.ListDueListingsParams{
		Now:   timeToPgTimestamptz(now),
		Limit: int32(limit),
	})
}

// List returns all listings in creation order.
func (r *ListingRepository) List(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	rows, err := r.queries.ListListings(ctx, generated.ListListingsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToListings(rows), nil
}

func rowsToListings(rows []generated.Listing) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, rowToListing(row))
	}
	return listings
}

func rowToListing(row generated.Listing) *domain.Listing {
	return &domain.Listing{
		ID:      row.ID,
		OwnerID: row.OwnerID,
		Kind:    domain.ListingKind(row.Kind),
		Asset: domain.Asset{
			Title:        row.Title,
			Category:     row.Category,
			ImageURL:     row.ImageUrl,
			ButtonAmount: row.ButtonAmount,
		},
		ReservePrice:    row.ReservePrice,
		HighestAmount:   row.HighestAmount,
		HighestBidderID: pgTextToStringPtr(row.HighestBidderID),
		BidCount:        int64(row.BidCount),
		Status:          domain.ListingStatus(row.Status),
		Deadline:        row.Deadline.Time,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
		SettledAt:       pgTimestamptzToTimePtr(row.SettledAt),
	}
}
