package memory

import (
	"context"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create appends a transaction row.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if err := r.store.fault("transactions.Create"); err != nil {
		return err
	}

	stored := *t
	n := len(r.store.transactions)
	r.store.transactions = append(r.store.transactions, &stored)
	asTx(tx).onRollback(func() { r.store.transactions = r.store.transactions[:n] })
	return nil
}

// ListByAccount returns an account's transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, currency domain.Currency, limit, offset int) ([]*domain.Transaction, error) {
	return r.newestFirst(ctx, limit, offset, func(t *domain.Transaction) bool {
		return t.AccountID == accountID && (currency == "" || t.Currency == currency)
	})
}

// ListRecent returns the newest transactions across all accounts.
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	return r.newestFirst(ctx, limit, 0, func(*domain.Transaction) bool { return true })
}

func (r *TransactionRepository) newestFirst(ctx context.Context, limit, offset int, match func(*domain.Transaction) bool) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := r.store.read(ctx, func() error {
		skipped := 0
		for i := len(r.store.transactions) - 1; i >= 0; i-- {
			t := r.store.transactions[i]
			if !match(t) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			cp := *t
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// SumByAccount sums an account's log, keeping initial grants apart.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string, currency domain.Currency) (usecase.TransactionSums, error) {
	var sums usecase.TransactionSums
	err := r.store.read(ctx, func() error {
		for _, t := range r.store.transactions {
			if t.AccountID != accountID || t.Currency != currency {
				continue
			}
			sums.Count++
			if t.Kind == domain.KindInitialGrant {
				sums.InitialGrant += t.Amount
			} else {
				sums.Movements += t.Amount
			}
		}
		return nil
	})
	return sums, err
}
