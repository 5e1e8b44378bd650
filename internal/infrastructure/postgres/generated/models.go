package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
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

type Bid struct {
	ID        string             `json:"id"`
	ListingID string             `json:"listing_id"`
	BidderID  string             `json:"bidder_id"`
	Amount    int64              `json:"amount"`
	Charged   int64              `json:"charged"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Listing struct {
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

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Payout struct {
	ID          string             `json:"id"`
	ListingID   string             `json:"listing_id"`
	BidID       string             `json:"bid_id"`
	AccountID   string             `json:"account_id"`
	Currency    string             `json:"currency"`
	Amount      int64              `json:"amount"`
	Status      string             `json:"status"`
	Attempts    int32              `json:"attempts"`
	LastError   string             `json:"last_error"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
}

type Transaction struct {
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
