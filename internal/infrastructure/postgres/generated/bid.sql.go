package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createBid = `-- name: CreateBid :exec
INSERT INTO bids (id, listing_id, bidder_id, amount, charged, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateBidParams struct {
	ID        string             `json:"id"`
	ListingID string             `json:"listing_id"`
	BidderID  string             `json:"bidder_id"`
	Amount    int64              `json:"amount"`
	Charged   int64              `json:"charged"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateBid(ctx context.Context, arg CreateBidParams) error {
	_, err := q.db.Exec(ctx, createBid,
		arg.ID,
		arg.ListingID,
		arg.BidderID,
		arg.Amount,
		arg.Charged,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getActiveBidByListing = `-- name: GetActiveBidByListing :one
SELECT id, listing_id, bidder_id, amount, charged, status, created_at, updated_at FROM bids
WHERE listing_id = $1 AND status = 'active'
FOR UPDATE
`

func (q *Queries) GetActiveBidByListing(ctx context.Context, listingID string) (Bid, error) {
	row := q.db.QueryRow(ctx, getActiveBidByListing, listingID)
	var i Bid
	err := row.Scan(
		&i.ID,
		&i.ListingID,
		&i.BidderID,
		&i.Amount,
		&i.Charged,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBidsByBidder = `-- name: ListBidsByBidder :many
SELECT id, listing_id, bidder_id, amount, charged, status, created_at, updated_at FROM bids
WHERE bidder_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListBidsByBidderParams struct {
	BidderID string `json:"bidder_id"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListBidsByBidder(ctx context.Context, arg ListBidsByBidderParams) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listBidsByBidder, arg.BidderID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Bid{}
	for rows.Next() {
		var i Bid
		if err := rows.Scan(
			&i.ID,
			&i.ListingID,
			&i.BidderID,
			&i.Amount,
			&i.Charged,
			&i.Status,
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

const listBidsByListing = `-- name: ListBidsByListing :many
SELECT id, listing_id, bidder_id, amount, charged, status, created_at, updated_at FROM bids
WHERE listing_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListBidsByListing(ctx context.Context, listingID string) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listBidsByListing, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Bid{}
	for rows.Next() {
		var i Bid
		if err := rows.Scan(
			&i.ID,
			&i.ListingID,
			&i.BidderID,
			&i.Amount,
			&i.Charged,
			&i.Status,
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

const updateBidStatus = `-- name: UpdateBidStatus :execrows
UPDATE bids SET status = $2, updated_at = $3
WHERE id = $1
`

type UpdateBidStatusParams struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateBidStatus(ctx context.Context, arg UpdateBidStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateBidStatus, arg.ID, arg.Status, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
