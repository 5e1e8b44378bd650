package domain

import "time"

// ListingKind distinguishes what is auctioned and in which currency.
type ListingKind string

const (
	// ListingKindItem auctions a clothing item for buttons.
	ListingKindItem ListingKind = "item"
	// ListingKindButtonLot auctions a quantity of buttons for USD.
	ListingKindButtonLot ListingKind = "button_lot"
)

// IsValid checks if the kind is known.
func (k ListingKind) IsValid() bool {
	return k == ListingKindItem || k == ListingKindButtonLot
}

// Currency returns the currency bids on this kind of listing are placed in.
func (k ListingKind) Currency() Currency {
	if k == ListingKindButtonLot {
		return CurrencyUSD
	}
	return CurrencyButtons
}

// ListingStatus represents the lifecycle state of a listing.
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusExpired   ListingStatus = "expired"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s ListingStatus) IsTerminal() bool {
	return s == ListingStatusSold || s == ListingStatusExpired || s == ListingStatusCancelled
}

// Asset is the catalog description of what a listing sells. The core only
// reads ButtonAmount; the rest is passed through.
type Asset struct {
	Title        string
	Category     string
	ImageURL     string
	ButtonAmount int64
}

// Listing is an auction. HighestAmount is zero until the first bid and
// HighestBidderID is set iff HighestAmount > 0.
type Listing struct {
	ID              string
	OwnerID         string
	Kind            ListingKind
	Asset           Asset
	ReservePrice    int64
	HighestAmount   int64
	HighestBidderID *string
	BidCount        int64
	Status          ListingStatus
	Deadline        time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SettledAt       *time.Time
}

// Currency is the currency of bids on this listing.
func (l *Listing) Currency() Currency {
	return l.Kind.Currency()
}

// AcceptsBids reports whether a bid may be placed at now. The deadline is
// authoritative even while the status still says active.
func (l *Listing) AcceptsBids(now time.Time) bool {
	return l.Status == ListingStatusActive && now.Before(l.Deadline)
}

// HasBids reports whether any bid has been accepted.
func (l *Listing) HasBids() bool {
	return l.HighestAmount > 0 && l.HighestBidderID != nil
}

// MinimumBid is the smallest amount the next bid must reach.
func (l *Listing) MinimumBid() int64 {
	if !l.HasBids() {
		return l.ReservePrice
	}
	return l.HighestAmount + 1
}

// IsHighestBidder reports whether accountID holds the standing bid.
func (l *Listing) IsHighestBidder(accountID string) bool {
	return l.HighestBidderID != nil && *l.HighestBidderID == accountID
}

// CanCancel returns nil if ownerID may cancel the listing at now.
func (l *Listing) CanCancel(ownerID string, now time.Time) error {
	if l.OwnerID != ownerID {
		return ErrNotListingOwner
	}
	if !l.AcceptsBids(now) {
		return ErrListingNotActive
	}
	if l.HasBids() {
		return ErrListingHasBids
	}
	return nil
}

// IsDue reports whether the listing is active and its deadline has passed.
func (l *Listing) IsDue(now time.Time) bool {
	return l.Status == ListingStatusActive && !now.Before(l.Deadline)
}

// ListingFilter narrows ListActive queries.
type ListingFilter struct {
	Kind    ListingKind
	OwnerID string
	Limit   int
	Offset  int
}
