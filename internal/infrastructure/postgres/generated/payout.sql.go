package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPayout = `-- name: CreatePayout :exec
INSERT INTO payouts (id, listing_id, bid_id, account_id, currency, amount, status, attempts, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 0, '', $8, $8)
ON CONFLICT (listing_id, bid_id) DO NOTHING
`

type CreatePayoutParams struct {
	ID        string             `json:"id"`
	ListingID string             `json:"listing_id"`
	BidID     string             `json:"bid_id"`
	AccountID string             `json:"account_id"`
	Currency  string             `json:"currency"`
	Amount    int64              `json:"amount"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreatePayout(ctx context.Context, arg CreatePayoutParams) error {
	_, err := q.db.Exec(ctx, createPayout,
		arg.ID,
		arg.ListingID,
		arg.BidID,
		arg.AccountID,
		arg.Currency,
		arg.Amount,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const getPayout = `-- name: GetPayout :one
SELECT id, listing_id, bid_id, account_id, currency, amount, status, attempts, last_error, created_at, updated_at, completed_at FROM payouts
WHERE id = $1
`

func (q *Queries) GetPayout(ctx context.Context, id string) (Payout, error) {
	row := q.db.QueryRow(ctx, getPayout, id)
	var i Payout
	err := row.Scan(
		&i.ID,
		&i.ListingID,
		&i.BidID,
		&i.AccountID,
		&i.Currency,
		&i.Amount,
		&i.Status,
		&i.Attempts,
		&i.LastError,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const getPayoutForUpdate = `-- name: GetPayoutForUpdate :one
SELECT id, listing_id, bid_id, account_id, currency, amount, status, attempts, last_error, created_at, updated_at, completed_at FROM payouts
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetPayoutForUpdate(ctx context.Context, id string) (Payout, error) {
	row := q.db.QueryRow(ctx, getPayoutForUpdate, id)
	var i Payout
	err := row.Scan(
		&i.ID,
		&i.ListingID,
		&i.BidID,
		&i.AccountID,
		&i.Currency,
		&i.Amount,
		&i.Status,
		&i.Attempts,
		&i.LastError,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const listPendingPayouts = `-- name: ListPendingPayouts :many
SELECT id FROM payouts
WHERE status = 'pending'
ORDER BY created_at, id
LIMIT $1
`

func (q *Queries) ListPendingPayouts(ctx context.Context, limit int32) ([]string, error) {
	rows, err := q.db.Query(ctx, listPendingPayouts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markPayoutCompleted = `-- name: MarkPayoutCompleted :execrows
UPDATE payouts
SET status = 'completed', attempts = $2, last_error = '', updated_at = $3, completed_at = $3
WHERE id = $1
`

type MarkPayoutCompletedParams struct {
	ID          string             `json:"id"`
	Attempts    int32              `json:"attempts"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
}

func (q *Queries) MarkPayoutCompleted(ctx context.Context, arg MarkPayoutCompletedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markPayoutCompleted, arg.ID, arg.Attempts, arg.CompletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const recordPayoutFailure = `-- name: RecordPayoutFailure :execrows
UPDATE payouts
SET attempts = attempts + 1, last_error = $2, updated_at = $3
WHERE id = $1 AND status = 'pending'
`

type RecordPayoutFailureParams struct {
	ID        string             `json:"id"`
	LastError string             `json:"last_error"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) RecordPayoutFailure(ctx context.Context, arg RecordPayoutFailureParams) (int64, error) {
	result, err := q.db.Exec(ctx, recordPayoutFailure, arg.ID, arg.LastError, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
