package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/postgres/generated"
	"github.com/iho/buttonmarket/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new wallet.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := txQueries(tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:           account.ID,
		Currency:     string(account.Currency),
		Balance:      account.Balance,
		InitialGrant: account.InitialGrant,
		Earned:       account.Earned,
		Spent:        account.Spent,
		Version:      account.Version,
		CreatedAt:    timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(account.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrAccountExists
	}

	return err
}

// GetByID retrieves a wallet.
func (r *AccountRepository) GetByID(ctx context.Context, id string, currency domain.Currency) (*domain.Account, error) {
	row, err := r.queries.GetAccount(ctx, generated.GetAccountParams{ID: id, Currency: string(currency)})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves a wallet with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string, currency domain.Currency) (*domain.Account, error) {
	row, err := txQueries(tx).GetAccountForUpdate(ctx, generated.GetAccountForUpdateParams{ID: id, Currency: string(currency)})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// Credit adds to a balance, creating the wallet on first use.
func (r *AccountRepository) Credit(ctx context.Context, tx usecase.Transaction, params usecase.BalanceChange) (*domain.Account, error) {
	row, err := txQueries(tx).CreditAccount(ctx, generated.CreditAccountParams{
		ID:          params.AccountID,
		Currency:    string(params.Currency),
		Amount:      params.Amount,
		CountEarned: params.CountEarned,
		At:          timeToPgTimestamptz(params.At),
	})
	if err != nil {
		return nil, err
	}

	return rowToAccount(row), nil
}

// Debit subtracts from a balance in a single conditional update. No row
// means the wallet is missing or cannot cover the amount.
func (r *AccountRepository) Debit(ctx context.Context, tx usecase.Transaction, params usecase.BalanceChange) (*domain.Account, error) {
	row, err := txQueries(tx).DebitAccount(ctx, generated.DebitAccountParams{
		ID:         params.AccountID,
		Currency:   string(params.Currency),
		Amount:     params.Amount,
		CountSpent: params.CountSpent,
		At:         timeToPgTimestamptz(params.At),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsufficientFunds
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// ListByOwner returns every wallet of an account.
func (r *AccountRepository) ListByOwner(ctx context.Context, id string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// List returns wallets ordered by account id and currency.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:           row.ID,
		Currency:     domain.Currency(row.Currency),
		Balance:      row.Balance,
		InitialGrant: row.InitialGrant,
		Earned:       row.Earned,
		Spent:        row.Spent,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
