package domain

import "time"

// Event types
const (
	EventTypeListingCreated   = "listing.created"
	EventTypeListingCancelled = "listing.cancelled"
	EventTypeListingSold      = "listing.sold"
	EventTypeListingExpired   = "listing.expired"
	EventTypeBidPlaced        = "bid.placed"
	EventTypeBidOutbid        = "bid.outbid"
	EventTypeLedgerCredited   = "ledger.credited"
	EventTypeLedgerDebited    = "ledger.debited"
	EventTypePayoutCompleted  = "payout.completed"
)

// Aggregate types
const (
	AggregateTypeListing = "listing"
	AggregateTypeBid     = "bid"
	AggregateTypeAccount = "account"
	AggregateTypePayout  = "payout"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// Subject returns the message subject suffix, e.g. "listing.sold".
func (e *OutboxEvent) Subject() string {
	return e.EventType
}

// NewLedgerEvent builds the outbox event for a ledger mutation.
func NewLedgerEvent(id string, tx *Transaction) *OutboxEvent {
	eventType := EventTypeLedgerCredited
	if !tx.IsCredit() {
		eventType = EventTypeLedgerDebited
	}
	payload := map[string]any{
		"transaction_id": tx.ID,
		"account_id":     tx.AccountID,
		"currency":       string(tx.Currency),
		"amount":         tx.Amount,
		"kind":           string(tx.Kind),
		"balance_after":  tx.BalanceAfter,
		"description":    tx.Description,
	}
	if tx.RelatedID != nil {
		payload["related_id"] = *tx.RelatedID
	}
	return &OutboxEvent{
		ID:            id,
		AggregateID:   tx.AccountID,
		AggregateType: AggregateTypeAccount,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     tx.CreatedAt,
	}
}

// NewListingEvent builds an outbox event describing the listing's current state.
func NewListingEvent(id, eventType string, l *Listing, at time.Time) *OutboxEvent {
	payload := map[string]any{
		"listing_id":     l.ID,
		"owner_id":       l.OwnerID,
		"kind":           string(l.Kind),
		"currency":       string(l.Currency()),
		"status":         string(l.Status),
		"reserve_price":  l.ReservePrice,
		"highest_amount": l.HighestAmount,
		"deadline":       l.Deadline.UTC().Format(time.RFC3339),
		"title":          l.Asset.Title,
	}
	if l.HighestBidderID != nil {
		payload["highest_bidder_id"] = *l.HighestBidderID
	}
	if l.Kind == ListingKindButtonLot {
		payload["button_amount"] = l.Asset.ButtonAmount
	}
	return &OutboxEvent{
		ID:            id,
		AggregateID:   l.ID,
		AggregateType: AggregateTypeListing,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	}
}

// NewBidEvent builds an outbox event for a bid state change.
func NewBidEvent(id, eventType string, b *Bid, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   b.ID,
		AggregateType: AggregateTypeBid,
		EventType:     eventType,
		Payload: map[string]any{
			"bid_id":     b.ID,
			"listing_id": b.ListingID,
			"bidder_id":  b.BidderID,
			"amount":     b.Amount,
			"status":     string(b.Status),
		},
		CreatedAt: at,
	}
}

// NewPayoutEvent builds the outbox event for a completed refund payout.
func NewPayoutEvent(id string, p *Payout, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   p.ID,
		AggregateType: AggregateTypePayout,
		EventType:     EventTypePayoutCompleted,
		Payload: map[string]any{
			"payout_id":  p.ID,
			"listing_id": p.ListingID,
			"bid_id":     p.BidID,
			"account_id": p.AccountID,
			"currency":   string(p.Currency),
			"amount":     p.Amount,
			"attempts":   p.Attempts,
		},
		CreatedAt: at,
	}
}
