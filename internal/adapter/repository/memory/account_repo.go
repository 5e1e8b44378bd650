package memory

import (
	"context"
	"sort"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if err := r.store.fault("accounts.Create"); err != nil {
		return err
	}

	key := accountKey{account.ID, account.Currency}
	if _, ok := r.store.accounts[key]; ok {
		return domain.ErrAccountExists
	}

	stored := *account
	r.store.accounts[key] = &stored
	asTx(tx).onRollback(func() { delete(r.store.accounts, key) })
	return nil
}

// GetByID retrieves an account wallet.
func (r *AccountRepository) GetByID(ctx context.Context, id string, currency domain.Currency) (*domain.Account, error) {
	var account *domain.Account
	err := r.store.read(ctx, func() error {
		var err error
		account, err = r.get(id, currency)
		return err
	})
	return account, err
}

// GetByIDForUpdate retrieves an account wallet inside a transaction.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string, currency domain.Currency) (*domain.Account, error) {
	return r.get(id, currency)
}

func (r *AccountRepository) get(id string, currency domain.Currency) (*domain.Account, error) {
	if err := r.store.fault("accounts.Get"); err != nil {
		return nil, err
	}

	a, ok := r.store.accounts[accountKey{id, currency}]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	out := *a
	return &out, nil
}

// Credit adds to a balance, creating the wallet on first use.
func (r *AccountRepository) Credit(ctx context.Context, tx usecase.Transaction, params usecase.BalanceChange) (*domain.Account, error) {
	if err := r.store.fault("accounts.Credit"); err != nil {
		return nil, err
	}

	key := accountKey{params.AccountID, params.Currency}
	a, ok := r.store.accounts[key]
	if !ok {
		a = &domain.Account{ID: params.AccountID, Currency: params.Currency, CreatedAt: params.At}
		r.store.accounts[key] = a
		asTx(tx).onRollback(func() { delete(r.store.accounts, key) })
	} else {
		before := *a
		asTx(tx).onRollback(func() { *a = before })
	}

	a.Balance += params.Amount
	if params.CountEarned {
		a.Earned += params.Amount
	}
	a.Version++
	if params.At.After(a.UpdatedAt) {
		a.UpdatedAt = params.At
	}

	out := *a
	return &out, nil
}

// Debit subtracts from a balance only if it covers the amount.
func (r *AccountRepository) Debit(ctx context.Context, tx usecase.Transaction, params usecase.BalanceChange) (*domain.Account, error) {
	if err := r.store.fault("accounts.Debit"); err != nil {
		return nil, err
	}

	a, ok := r.store.accounts[accountKey{params.AccountID, params.Currency}]
	if !ok || a.Balance < params.Amount {
		return nil, domain.ErrInsufficientFunds
	}

	before := *a
	asTx(tx).onRollback(func() { *a = before })

	a.Balance -= params.Amount
	if params.CountSpent {
		a.Spent += params.Amount
	}
	a.Version++
	if params.At.After(a.UpdatedAt) {
		a.UpdatedAt = params.At
	}

	out := *a
	return &out, nil
}

// ListByOwner returns every wallet of an account.
func (r *AccountRepository) ListByOwner(ctx context.Context, id string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.store.read(ctx, func() error {
		for _, c := range []domain.Currency{domain.CurrencyButtons, domain.CurrencyUSD} {
			if a, ok := r.store.accounts[accountKey{id, c}]; ok {
				out := *a
				accounts = append(accounts, &out)
			}
		}
		return nil
	})
	return accounts, err
}

// List returns wallets ordered by account id and currency.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.store.read(ctx, func() error {
		all := make([]*domain.Account, 0, len(r.store.accounts))
		for _, a := range r.store.accounts {
			all = append(all, a)
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].ID != all[j].ID {
				return all[i].ID < all[j].ID
			}
			return all[i].Currency < all[j].Currency
		})

		for _, a := range page(all, limit, offset) {
			out := *a
			accounts = append(accounts, &out)
		}
		return nil
	})
	return accounts, err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
