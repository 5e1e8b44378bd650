package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, account_id, currency, amount, kind, related_id, description, balance_after, sequence, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateTransactionParams struct {
	ID           string             `json:"id"`
	AccountID    string             `json:"account_id"`
	Currency     string             `json:"currency"`
	Amount       int64              `json:"amount"`
	Kind         string             `json:"kind"`
	RelatedID    pgtype.Text        `json:"related_id"`
	Description  string             `json:"description"`
	BalanceAfter int64              `json:"balance_after"`
	Sequence     int64              `json:"sequence"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.AccountID,
		arg.Currency,
		arg.Amount,
		arg.Kind,
		arg.RelatedID,
		arg.Description,
		arg.BalanceAfter,
		arg.Sequence,
		arg.CreatedAt,
	)
	return err
}

const listRecentTransactions = `-- name: ListRecentTransactions :many
SELECT id, account_id, currency, amount, kind, related_id, description, balance_after, sequence, created_at FROM transactions
ORDER BY created_at DESC, id DESC
LIMIT $1
`

func (q *Queries) ListRecentTransactions(ctx context.Context, limit int32) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listRecentTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Currency,
			&i.Amount,
			&i.Kind,
			&i.RelatedID,
			&i.Description,
			&i.BalanceAfter,
			&i.Sequence,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactionsByAccount = `-- name: ListTransactionsByAccount :many
SELECT id, account_id, currency, amount, kind, related_id, description, balance_after, sequence, created_at FROM transactions
WHERE account_id = $1
  AND ($2::text IS NULL OR currency = $2::text)
ORDER BY created_at DESC, sequence DESC, id DESC
LIMIT $3 OFFSET $4
`

type ListTransactionsByAccountParams struct {
	AccountID string      `json:"account_id"`
	Currency  pgtype.Text `json:"currency"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListTransactionsByAccount(ctx context.Context, arg ListTransactionsByAccountParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByAccount,
		arg.AccountID,
		arg.Currency,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Currency,
			&i.Amount,
			&i.Kind,
			&i.RelatedID,
			&i.Description,
			&i.BalanceAfter,
			&i.Sequence,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumTransactionsByAccount = `-- name: SumTransactionsByAccount :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE kind = 'initial-grant'), 0)::bigint AS initial_grant,
    COALESCE(SUM(amount) FILTER (WHERE kind <> 'initial-grant'), 0)::bigint AS movements,
    COUNT(*) AS count
FROM transactions
WHERE account_id = $1 AND currency = $2
`

type SumTransactionsByAccountParams struct {
	AccountID string `json:"account_id"`
	Currency  string `json:"currency"`
}

type SumTransactionsByAccountRow struct {
	InitialGrant int64 `json:"initial_grant"`
	Movements    int64 `json:"movements"`
	Count        int64 `json:"count"`
}

func (q *Queries) SumTransactionsByAccount(ctx context.Context, arg SumTransactionsByAccountParams) (SumTransactionsByAccountRow, error) {
	row := q.db.QueryRow(ctx, sumTransactionsByAccount, arg.AccountID, arg.Currency)
	var i SumTransactionsByAccountRow
	err := row.Scan(&i.InitialGrant, &i.Movements, &i.Count)
	return i, err
}
