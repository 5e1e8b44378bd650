package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// ListingRepository implements usecase.ListingRepository.
type ListingRepository struct {
	store *Store
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(store *Store) *ListingRepository {
	return &ListingRepository{store: store}
}

// Create inserts a listing.
func (r *ListingRepository) Create(ctx context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	if err := r.store.fault("listings.Create"); err != nil {
		return err
	}

	stored := *listing
	n := len(r.store.listingOrder)
	r.store.listings[listing.ID] = &stored
	r.store.listingOrder = append(r.store.listingOrder, listing.ID)
	asTx(tx).onRollback(func() {
		delete(r.store.listings, listing.ID)
		r.store.listingOrder = r.store.listingOrder[:n]
	})
	return nil
}

// GetByID retrieves a listing.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var listing *domain.Listing
	err := r.store.read(ctx, func() error {
		var err error
		listing, err = r.get(id)
		return err
	})
	return listing, err
}

// GetByIDForUpdate retrieves a listing inside a transaction.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Listing, error) {
	return r.get(id)
}

func (r *ListingRepository) get(id string) (*domain.Listing, error) {
	if err := r.store.fault("listings.Get"); err != nil {
		return nil, err
	}

	l, ok := r.store.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	out := *l
	return &out, nil
}

// Update stores the listing's auction fields.
func (r *ListingRepository) Update(ctx context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	if err := r.store.fault("listings.Update"); err != nil {
		return err
	}

	l, ok := r.store.listings[listing.ID]
	if !ok {
		return domain.ErrListingNotFound
	}

	before := *l
	asTx(tx).onRollback(func() { *l = before })

	l.HighestAmount = listing.HighestAmount
	l.HighestBidderID = listing.HighestBidderID
	l.BidCount = listing.BidCount
	l.Status = listing.Status
	l.UpdatedAt = listing.UpdatedAt
	l.SettledAt = listing.SettledAt
	return nil
}

// ListActive returns open listings, soonest deadline first.
func (r *ListingRepository) ListActive(ctx context.Context, filter domain.ListingFilter, now time.Time) ([]*domain.Listing, error) {
	var out []*domain.Listing
	err := r.store.read(ctx, func() error {
		var matched []*domain.Listing
		for _, id := range r.store.listingOrder {
			l := r.store.listings[id]
			if !l.AcceptsBids(now) {
				continue
			}
			if filter.Kind != "" && l.Kind != filter.Kind {
				continue
			}
			if filter.OwnerID != "" && l.OwnerID != filter.OwnerID {
				continue
			}
			matched = append(matched, l)
		}
		sortByDeadline(matched)

		for _, l := range page(matched, filter.Limit, filter.Offset) {
			cp := *l
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// ListDue returns ids of active listings whose deadline has passed.
func (r *ListingRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	var ids []string
	err := r.store.read(ctx, func() error {
		if err := r.store.fault("listings.ListDue"); err != nil {
			return err
		}

		var due []*domain.Listing
		for _, id := range r.store.listingOrder {
			if l := r.store.listings[id]; l.IsDue(now) {
				due = append(due, l)
			}
		}
		sortByDeadline(due)

		for _, l := range page(due, limit, 0) {
			ids = append(ids, l.ID)
		}
		return nil
	})
	return ids, err
}

// List returns all listings in creation order.
func (r *ListingRepository) List(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	var out []*domain.Listing
	err := r.store.read(ctx, func() error {
		for _, id := range page(r.store.listingOrder, limit, offset) {
			cp := *r.store.listings[id]
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func sortByDeadline(listings []*domain.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if !listings[i].Deadline.Equal(listings[j].Deadline) {
			return listings[i].Deadline.Before(listings[j].Deadline)
		}
		return listings[i].ID < listings[j].ID
	})
}
