package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateAccountParams struct {
	ID           string             `json:"id"`
	Currency     string             `json:"currency"`
	Balance      int64              `json:"balance"`
	InitialGrant int64              `json:"initial_grant"`
	Earned       int64              `json:"earned"`
	Spent        int64              `json:"spent"`
	Version      int64              `json:"version"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.Currency,
		arg.Balance,
		arg.InitialGrant,
		arg.Earned,
		arg.Spent,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const creditAccount = `-- name: CreditAccount :one
INSERT INTO accounts (id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at)
VALUES ($1, $2, $3, 0, CASE WHEN $4::bool THEN $3 ELSE 0 END, 0, 1, $5, $5)
ON CONFLICT (id, currency) DO UPDATE
SET balance = accounts.balance + EXCLUDED.balance,
    earned = accounts.earned + EXCLUDED.earned,
    version = accounts.version + 1,
    updated_at = GREATEST(accounts.updated_at, EXCLUDED.updated_at)
RETURNING id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at
`

type CreditAccountParams struct {
	ID          string             `json:"id"`
	Currency    string             `json:"currency"`
	Amount      int64              `json:"amount"`
	CountEarned bool               `json:"count_earned"`
	At          pgtype.Timestamptz `json:"at"`
}

func (q *Queries) CreditAccount(ctx context.Context, arg CreditAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, creditAccount,
		arg.ID,
		arg.Currency,
		arg.Amount,
		arg.CountEarned,
		arg.At,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Currency,
		&i.Balance,
		&i.InitialGrant,
		&i.Earned,
		&i.Spent,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const debitAccount = `-- name: DebitAccount :one
UPDATE accounts
SET balance = balance - $3,
    spent = spent + CASE WHEN $4::bool THEN $3 ELSE 0 END,
    version = version + 1,
    updated_at = GREATEST(updated_at, $5)
WHERE id = $1 AND currency = $2 AND balance >= $3
RETURNING id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at
`

type DebitAccountParams struct {
	ID         string             `json:"id"`
	Currency   string             `json:"currency"`
	Amount     int64              `json:"amount"`
	CountSpent bool               `json:"count_spent"`
	At         pgtype.Timestamptz `json:"at"`
}

func (q *Queries) DebitAccount(ctx context.Context, arg DebitAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, debitAccount,
		arg.ID,
		arg.Currency,
		arg.Amount,
		arg.CountSpent,
		arg.At,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Currency,
		&i.Balance,
		&i.InitialGrant,
		&i.Earned,
		&i.Spent,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccount = `-- name: GetAccount :one
SELECT id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at FROM accounts
WHERE id = $1 AND currency = $2
`

type GetAccountParams struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
}

func (q *Queries) GetAccount(ctx context.Context, arg GetAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccount, arg.ID, arg.Currency)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Currency,
		&i.Balance,
		&i.InitialGrant,
		&i.Earned,
		&i.Spent,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountForUpdate = `-- name: GetAccountForUpdate :one
SELECT id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at FROM accounts
WHERE id = $1 AND currency = $2
FOR UPDATE
`

type GetAccountForUpdateParams struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
}

func (q *Queries) GetAccountForUpdate(ctx context.Context, arg GetAccountForUpdateParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountForUpdate, arg.ID, arg.Currency)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Currency,
		&i.Balance,
		&i.InitialGrant,
		&i.Earned,
		&i.Spent,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccounts = `-- name: ListAccounts :many
SELECT id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at FROM accounts
ORDER BY id, currency
LIMIT $1 OFFSET $2
`

type ListAccountsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Currency,
			&i.Balance,
			&i.InitialGrant,
			&i.Earned,
			&i.Spent,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listAccountsByOwner = `-- name: ListAccountsByOwner :many
SELECT id, currency, balance, initial_grant, earned, spent, version, created_at, updated_at FROM accounts
WHERE id = $1
ORDER BY currency
`

func (q *Queries) ListAccountsByOwner(ctx context.Context, id string) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByOwner, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Currency,
			&i.Balance,
			&i.InitialGrant,
			&i.Earned,
			&i.Spent,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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
