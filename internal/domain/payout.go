package domain

import "time"

// PayoutStatus represents the state of a queued refund.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
)

// Payout is a queued refund of an outbid bidder's committed funds. It is
// unique per (ListingID, BidID) and is delivered at least once.
type Payout struct {
	ID          string
	ListingID   string
	BidID       string
	AccountID   string
	Currency    Currency
	Amount      int64
	Status      PayoutStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// IsCompleted checks if the refund was already applied.
func (p *Payout) IsCompleted() bool {
	return p.Status == PayoutStatusCompleted
}
