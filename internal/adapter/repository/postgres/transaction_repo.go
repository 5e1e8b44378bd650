package postgres

import (
	"context"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/postgres/generated"
	"github.com/iho/buttonmarket/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create appends a transaction row.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	return txQueries(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Currency:     string(t.Currency),
		Amount:       t.Amount,
		Kind:         string(t.Kind),
		RelatedID:    stringPtrToPgText(t.RelatedID),
		Description:  t.Description,
		BalanceAfter: t.BalanceAfter,
		Sequence:     t.Sequence,
		CreatedAt:    timeToPgTimestamptz(t.CreatedAt),
	})
}

// ListByAccount returns an account's transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, currency domain.Currency, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: accountID,
		Currency:  optionalText(string(currency)),
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListRecent returns the newest transactions across all accounts.
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	limit, _ = domain.ValidatePagination(limit, 0)

	rows, err := r.queries.ListRecentTransactions(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// SumByAccount sums an account's log, keeping initial grants apart.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string, currency domain.Currency) (usecase.TransactionSums, error) {
	row, err := r.queries.SumTransactionsByAccount(ctx, generated.SumTransactionsByAccountParams{
		AccountID: accountID,
		Currency:  string(currency),
	})
	if err != nil {
		return usecase.TransactionSums{}, err
	}

	return usecase.TransactionSums{
		InitialGrant: row.InitialGrant,
		Movements:    row.Movements,
		Count:        row.Count,
	}, nil
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, &domain.Transaction{
			ID:           row.ID,
			AccountID:    row.AccountID,
			Currency:     domain.Currency(row.Currency),
			Amount:       row.Amount,
			Kind:         domain.TransactionKind(row.Kind),
			RelatedID:    pgTextToStringPtr(row.RelatedID),
			Description:  row.Description,
			BalanceAfter: row.BalanceAfter,
			Sequence:     row.Sequence,
			CreatedAt:    row.CreatedAt.Time,
		})
	}
	return txns
}
