package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createListing = `-- name: CreateListing :exec
INSERT INTO listings (
    id, owner_id, kind, title, category, image_url, button_amount, reserve_price,
    highest_amount, highest_bidder_id, bid_count, status, deadline, created_at, updated_at, settled_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

type CreateListingParams struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Kind            string             `json:"kind"`
	Title           string             `json:"title"`
	Category        string             `json:"category"`
	ImageUrl        string             `json:"image_url"`
	ButtonAmount    int64              `json:"button_amount"`
	ReservePrice    int64              `json:"reserve_price"`
	HighestAmount   int64              `json:"highest_amount"`
	HighestBidderID pgtype.Text        `json:"highest_bidder_id"`
	BidCount        int32              `json:"bid_count"`
	Status          string             `json:"status"`
	Deadline        pgtype.Timestamptz `json:"deadline"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
	SettledAt       pgtype.Timestamptz `json:"settled_at"`
}

func (q *Queries) CreateListing(ctx context.Context, arg CreateListingParams) error {
	_, err := q.db.Exec(ctx, createListing,
		arg.ID,
		arg.OwnerID,
		arg.Kind,
		arg.Title,
		arg.Category,
		arg.ImageUrl,
		arg.ButtonAmount,
		arg.ReservePrice,
		arg.HighestAmount,
		arg.HighestBidderID,
		arg.BidCount,
		arg.Status,
		arg.Deadline,
		arg.CreatedAt,
		arg.UpdatedAt,
		arg.SettledAt,
	)
	return err
}

const getListing = `-- name: GetListing :one
SELECT id, owner_id, kind, title, category, image_url, button_amount, reserve_price, highest_amount, highest_bidder_id, bid_count, status, deadline, created_at, updated_at, settled_at FROM listings
WHERE id = $1
`

func (q *Queries) GetListing(ctx context.Context, id string) (Listing, error) {
	row := q.db.QueryRow(ctx, getListing, id)
	var i Listing
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.Title,
		&i.Category,
		&i.ImageUrl,
		&i.ButtonAmount,
		&i.ReservePrice,
		&i.HighestAmount,
		&i.HighestBidderID,
		&i.BidCount,
		&i.Status,
		&i.Deadline,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.SettledAt,
	)
	return i, err
}

const getListingForUpdate = `-- name: GetListingForUpdate :one
SELECT id, owner_id, kind, title, category, image_url, button_amount, reserve_price, highest_amount, highest_bidder_id, bid_count, status, deadline, created_at, updated_at, settled_at FROM listings
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetListingForUpdate(ctx context.Context, id string) (Listing, error) {
	row := q.db.QueryRow(ctx, getListingForUpdate, id)
	var i Listing
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.Title,
		&i.Category,
		&i.ImageUrl,
		&i.ButtonAmount,
		&i.ReservePrice,
		&i.HighestAmount,
		&i.HighestBidderID,
		&i.BidCount,
		&i.Status,
		&i.Deadline,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.SettledAt,
	)
	return i, err
}

const updateListing = `-- name: UpdateListing :execrows
UPDATE listings
SET highest_amount = $2,
    highest_bidder_id = $3,
    bid_count = $4,
    status = $5,
    updated_at = $6,
    settled_at = $7
WHERE id = $1
`

type UpdateListingParams struct {
	ID              string             `json:"id"`
	HighestAmount   int64              `json:"highest_amount"`
	HighestBidderID pgtype.Text        `json:"highest_bidder_id"`
	BidCount        int32              `json:"bid_count"`
	Status          string             `json:"status"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
	SettledAt       pgtype.Timestamptz `json:"settled_at"`
}

func (q *Queries) UpdateListing(ctx context.Context, arg UpdateListingParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateListing,
		arg.ID,
		arg.HighestAmount,
		arg.HighestBidderID,
		arg.BidCount,
		arg.Status,
		arg.UpdatedAt,
		arg.SettledAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listActiveListings = `-- name: ListActiveListings :many
SELECT id, owner_id, kind, title, category, image_url, button_amount, reserve_price, highest_amount, highest_bidder_id, bid_count, status, deadline, created_at, updated_at, settled_at FROM listings
WHERE status = 'active'
  AND deadline > $1
  AND ($2::text IS NULL OR kind = $2::text)
  AND ($3::text IS NULL OR owner_id = $3::text)
ORDER BY deadline, id
LIMIT $4 OFFSET $5
`

type ListActiveListingsParams struct {
	Now     pgtype.Timestamptz `json:"now"`
	Kind    pgtype.Text        `json:"kind"`
	OwnerID pgtype.Text        `json:"owner_id"`
	Limit   int32              `json:"limit"`
	Offset  int32              `json:"offset"`
}

func (q *Queries) ListActiveListings(ctx context.Context, arg ListActiveListingsParams) ([]Listing, error) {
	rows, err := q.db.Query(ctx, listActiveListings,
		arg.Now,
		arg.Kind,
		arg.OwnerID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Listing{}
	for rows.Next() {
		var i Listing
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Kind,
			&i.Title,
			&i.Category,
			&i.ImageUrl,
			&i.ButtonAmount,
			&i.ReservePrice,
			&i.HighestAmount,
			&i.HighestBidderID,
			&i.BidCount,
			&i.Status,
			&i.Deadline,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.SettledAt,
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

const listDueListings = `-- name: ListDueListings :many
SELECT id FROM listings
WHERE status = 'active' AND deadline <= $1
ORDER BY deadline, id
LIMIT $2
`

type ListDueListingsParams struct {
	Now   pgtype.Timestamptz `json:"now"`
	Limit int32              `json:"limit"`
}

func (q *Queries) ListDueListings(ctx context.Context, arg ListDueListingsParams) ([]string, error) {
	rows, err := q.db.Query(ctx, listDueListings, arg.Now, arg.Limit)
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

const listListings = `-- name: ListListings :many
SELECT id, owner_id, kind, title, category, image_url, button_amount, reserve_price, highest_amount, highest_bidder_id, bid_count, status, deadline, created_at, updated_at, settled_at FROM listings
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`

type ListListingsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListListings(ctx context.Context, arg ListListingsParams) ([]Listing, error) {
	rows, err := q.db.Query(ctx, listListings, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Listing{}
	for rows.Next() {
		var i Listing
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Kind,
			&i.Title,
			&i.Category,
			&i.ImageUrl,
			&i.ButtonAmount,
			&i.ReservePrice,
			&i.HighestAmount,
			&i.HighestBidderID,
			&i.BidCount,
			&i.Status,
			&i.Deadline,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.SettledAt,
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
