package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
	"github.com/iho/buttonmarket/tests/testutil"
)

func TestAuctionLifecycle(t *testing.T) {
	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	s := testDB.NewStack()

	t.Run("winning bid pays the seller at the deadline", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		s.OpenAccount(t, "alice", 100)
		s.OpenAccount(t, "bob", 100)
		s.OpenAccount(t, "carol", 100)

		listing := s.ItemListing(t, "alice", 10)

		_, err := s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "bob", ListingID: listing.ID, Amount: 20})
		require.NoError(t, err)
		result, err := s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "carol", ListingID: listing.ID, Amount: 35})
		require.NoError(t, err)
		require.NotNil(t, result.Refund)

		results, err := s.Lifecycle.SweepExpiredListings(ctx, s.Clock.Now(), 10)
		require.NoError(t, err)
		assert.Empty(t, results, "nothing is due before the deadline")

		s.Clock.Advance(usecase.DefaultListingDuration + time.Second)
		results, err = s.Lifecycle.SweepExpiredListings(ctx, s.Clock.Now(), 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, usecase.OutcomeSold, results[0].Outcome)
		assert.Equal(t, "carol", *results[0].WinnerID)

		assert.Equal(t, int64(135), s.Balance(t, "alice", domain.CurrencyButtons))
		assert.Equal(t, int64(100), s.Balance(t, "bob", domain.CurrencyButtons))
		assert.Equal(t, int64(65), s.Balance(t, "carol", domain.CurrencyButtons))

		_, err = s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "bob", ListingID: listing.ID, Amount: 50})
		assert.ErrorIs(t, err, domain.ErrListingNotActive)

		s.RequireConsistent(t)
	})

	t.Run("listing without bids expires", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		s.OpenAccount(t, "alice", 100)
		listing := s.ItemListing(t, "alice", 10)

		s.Clock.Advance(usecase.DefaultListingDuration + time.Second)
		results, err := s.Lifecycle.SweepExpiredListings(ctx, s.Clock.Now(), 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, usecase.OutcomeExpired, results[0].Outcome)

		final, err := s.Listings.GetListing(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ListingStatusExpired, final.Status)
	})

	t.Run("button lot sells buttons for dollars", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		s.OpenAccount(t, "seller", 100)
		s.OpenAccount(t, "buyer", 0)

		_, err := s.Ledger.Grant(ctx, usecase.LedgerInput{
			AccountID: "buyer",
			Currency:  domain.CurrencyUSD,
			Kind:      domain.KindDeposit,
			Amount:    2000,
		})
		require.NoError(t, err)

		lot, err := s.Listings.CreateButtonLot(ctx, usecase.CreateButtonLotInput{
			OwnerID:      "seller",
			ButtonAmount: 40,
			ReserveCents: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60), s.Balance(t, "seller", domain.CurrencyButtons), "lot buttons are escrowed")

		_, err = s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "buyer", ListingID: lot.ID, Amount: 750})
		require.NoError(t, err)

		s.Clock.Advance(usecase.DefaultListingDuration + time.Second)
		_, err = s.Lifecycle.SweepExpiredListings(ctx, s.Clock.Now(), 10)
		require.NoError(t, err)

		assert.Equal(t, int64(750), s.Balance(t, "seller", domain.CurrencyUSD))
		assert.Equal(t, int64(40), s.Balance(t, "buyer", domain.CurrencyButtons))
		assert.Equal(t, int64(1250), s.Balance(t, "buyer", domain.CurrencyUSD))

		s.RequireConsistent(t)
	})
}

func TestListingEdgeCases(t *testing.T) {
	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	s := testDB.NewStack()
	testDB.TruncateAll(ctx)

	s.OpenAccount(t, "alice", 100)
	s.OpenAccount(t, "bob", 15)
	listing := s.ItemListing(t, "alice", 10)

	_, err := s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "alice", ListingID: listing.ID, Amount: 20})
	assert.ErrorIs(t, err, domain.ErrSelfBid)

	_, err = s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "bob", ListingID: listing.ID, Amount: 10})
	assert.ErrorIs(t, err, domain.ErrBidTooLow, "a bid must beat the reserve")

	_, err = s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "bob", ListingID: listing.ID, Amount: 40})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = s.Bids.PlaceBid(ctx, usecase.PlaceBidInput{BidderID: "bob", ListingID: listing.ID, Amount: 12})
	require.NoError(t, err)

	_, err = s.Listings.CancelListing(ctx, "alice", listing.ID)
	assert.ErrorIs(t, err, domain.ErrListingHasBids)

	_, err = s.Listings.CancelListing(ctx, "bob", listing.ID)
	assert.ErrorIs(t, err, domain.ErrNotListingOwner)

	other := s.ItemListing(t, "alice", 10)
	cancelled, err := s.Listings.CancelListing(ctx, "alice", other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusCancelled, cancelled.Status)

	s.RequireConsistent(t)
}
