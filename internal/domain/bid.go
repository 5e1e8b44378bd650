package domain

import "time"

// BidStatus represents the state of a bid.
type BidStatus string

const (
	BidStatusActive    BidStatus = "active"
	BidStatusOutbid    BidStatus = "outbid"
	BidStatusWon       BidStatus = "won"
	BidStatusCancelled BidStatus = "cancelled"
)

// Bid is one accepted bid.
type Bid struct {
	ID        string
	ListingID string
	BidderID  string
	Amount    int64
	// Charged is what the bidder was debited for this bid. It is less than
	// Amount when raising their own standing bid; reconciliation requires the
	// charges of consecutive bids by one bidder to sum to the latest Amount.
	Charged int64
	Status    BidStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive checks if the bid is the standing bid.
func (b *Bid) IsActive() bool {
	return b.Status == BidStatusActive
}
