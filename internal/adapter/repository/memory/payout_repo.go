package memory

import (
	"context"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// PayoutRepository implements usecase.PayoutRepository.
type PayoutRepository struct {
	store *Store
}

// NewPayoutRepository creates a new PayoutRepository.
func NewPayoutRepository(store *Store) *PayoutRepository {
	return &PayoutRepository{store: store}
}

// Create enqueues a payout unless one exists for the same listing and bid.
func (r *PayoutRepository) Create(ctx context.Context, tx usecase.Transaction, payout *domain.Payout) error {
	if err := r.store.fault("payouts.Create"); err != nil {
		return err
	}

	key := payoutKey{payout.ListingID, payout.BidID}
	if _, ok := r.store.payoutKeys[key]; ok {
		return nil
	}

	stored := *payout
	n := len(r.store.payoutOrder)
	r.store.payouts[payout.ID] = &stored
	r.store.payoutKeys[key] = payout.ID
	r.store.payoutOrder = append(r.store.payoutOrder, payout.ID)
	asTx(tx).onRollback(func() {
		delete(r.store.payouts, payout.ID)
		delete(r.store.payoutKeys, key)
		r.store.payoutOrder = r.store.payoutOrder[:n]
	})
	return nil
}

// GetByID retrieves a payout.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	var payout *domain.Payout
	err := r.store.read(ctx, func() error {
		p, ok := r.store.payouts[id]
		if !ok {
			return domain.ErrPayoutNotFound
		}
		cp := *p
		payout = &cp
		return nil
	})
	return payout, err
}

// GetByIDForUpdate retrieves a payout inside a transaction.
func (r *PayoutRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payout, error) {
	if err := r.store.fault("payouts.GetByIDForUpdate"); err != nil {
		return nil, err
	}

	p, ok := r.store.payouts[id]
	if !ok {
		return nil, domain.ErrPayoutNotFound
	}
	cp := *p
	return &cp, nil
}

// MarkCompleted marks a payout as applied.
func (r *PayoutRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id string, attempts int, completedAt time.Time) error {
	p, ok := r.store.payouts[id]
	if !ok {
		return domain.ErrPayoutNotFound
	}

	before := *p
	asTx(tx).onRollback(func() { *p = before })

	p.Status = domain.PayoutStatusCompleted
	p.Attempts = attempts
	p.LastError = ""
	p.UpdatedAt = completedAt
	p.CompletedAt = &completedAt
	return nil
}

// RecordFailure counts a failed attempt.
func (r *PayoutRepository) RecordFailure(ctx context.Context, id string, lastError string, at time.Time) error {
	return r.store.read(ctx, func() error {
		p, ok := r.store.payouts[id]
		if !ok {
			return domain.ErrPayoutNotFound
		}
		p.Attempts++
		p.LastError = lastError
		p.UpdatedAt = at
		return nil
	})
}

// ListPending returns ids of pending payouts, oldest first.
func (r *PayoutRepository) ListPending(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := r.store.read(ctx, func() error {
		for _, id := range r.store.payoutOrder {
			if !r.store.payouts[id].IsCompleted() {
				ids = append(ids, id)
			}
			if limit > 0 && len(ids) == limit {
				break
			}
		}
		return nil
	})
	return ids, err
}
