package domain

import (
	"errors"
	"testing"
	"time"
)

func TestListing_AcceptsBids(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   ListingStatus
		deadline time.Time
		want     bool
	}{
		{name: "active before deadline", status: ListingStatusActive, deadline: now.Add(time.Minute), want: true},
		{name: "active at deadline", status: ListingStatusActive, deadline: now, want: false},
		{name: "active past deadline", status: ListingStatusActive, deadline: now.Add(-time.Second), want: false},
		{name: "sold", status: ListingStatusSold, deadline: now.Add(time.Hour), want: false},
		{name: "cancelled", status: ListingStatusCancelled, deadline: now.Add(time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{Status: tt.status, Deadline: tt.deadline}
			if got := l.AcceptsBids(now); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestListing_MinimumBid(t *testing.T) {
	l := &Listing{ReservePrice: 50}
	if got := l.MinimumBid(); got != 50 {
		t.Fatalf("expected reserve 50, got %d", got)
	}

	bidder := "x"
	l.HighestAmount = 50
	l.HighestBidderID = &bidder
	if got := l.MinimumBid(); got != 51 {
		t.Fatalf("expected 51, got %d", got)
	}

	if !l.IsHighestBidder("x") || l.IsHighestBidder("y") {
		t.Error("highest bidder mismatch")
	}
}

func TestListing_CanCancel(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	bidder := "bob"

	tests := []struct {
		name    string
		listing Listing
		caller  string
		wantErr error
	}{
		{
			name:    "owner before any bid",
			listing: Listing{OwnerID: "alice", Status: ListingStatusActive, Deadline: now.Add(time.Hour)},
			caller:  "alice",
		},
		{
			name:    "not owner",
			listing: Listing{OwnerID: "alice", Status: ListingStatusActive, Deadline: now.Add(time.Hour)},
			caller:  "bob",
			wantErr: ErrNotListingOwner,
		},
		{
			name:    "has bids",
			listing: Listing{OwnerID: "alice", Status: ListingStatusActive, Deadline: now.Add(time.Hour), HighestAmount: 10, HighestBidderID: &bidder},
			caller:  "alice",
			wantErr: ErrListingHasBids,
		},
		{
			name:    "deadline passed",
			listing: Listing{OwnerID: "alice", Status: ListingStatusActive, Deadline: now},
			caller:  "alice",
			wantErr: ErrListingNotActive,
		},
		{
			name:    "already expired",
			listing: Listing{OwnerID: "alice", Status: ListingStatusExpired, Deadline: now.Add(time.Hour)},
			caller:  "alice",
			wantErr: ErrListingNotActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.listing.CanCancel(tt.caller, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestListing_IsDue(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if !(&Listing{Status: ListingStatusActive, Deadline: now}).IsDue(now) {
		t.Error("listing at deadline should be due")
	}

	if (&Listing{Status: ListingStatusSold, Deadline: now.Add(-time.Hour)}).IsDue(now) {
		t.Error("terminal listing should not be due")
	}

	if !ListingStatusExpired.IsTerminal() || ListingStatusActive.IsTerminal() {
		t.Error("terminal status mismatch")
	}
}

func TestListingKind_Currency(t *testing.T) {
	if ListingKindItem.Currency() != CurrencyButtons {
		t.Error("items are bid in buttons")
	}

	if ListingKindButtonLot.Currency() != CurrencyUSD {
		t.Error("button lots are bid in USD")
	}
}
