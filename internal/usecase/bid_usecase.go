package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// BidUseCase is the bid engine. A bid, its debit, the outbid bidder's queued
// refund and the listing update commit together under the listing row lock.
type BidUseCase struct {
	txManager   TransactionManager
	listingRepo ListingRepository
	bidRepo     BidRepository
	payoutRepo  PayoutRepository
	outboxRepo  OutboxRepository
	ledger      *LedgerUseCase
	payouts     PayoutProcessor
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewBidUseCase creates a new BidUseCase. payouts may be nil, leaving queued
// refunds to the payout worker.
func NewBidUseCase(
	txManager TransactionManager,
	listingRepo ListingRepository,
	bidRepo BidRepository,
	payoutRepo PayoutRepository,
	outboxRepo OutboxRepository,
	ledger *LedgerUseCase,
	payouts PayoutProcessor,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *BidUseCase {
	return &BidUseCase{
		txManager:   txManager,
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		payoutRepo:  payoutRepo,
		outboxRepo:  outboxRepo,
		ledger:      ledger,
		payouts:     payouts,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger,
	}
}

// PlaceBidInput represents a bid submission.
type PlaceBidInput struct {
	BidderID  string
	ListingID string
	Amount    int64
}

// PlaceBidResult is the accepted bid and the listing it now leads. Refund is
// the payout queued for the previous highest bidder, if any.
type PlaceBidResult struct {
	Listing *domain.Listing
	Bid     *domain.Bid
	Refund  *domain.Payout
}

// PlaceBid accepts a bid if the listing is open, the bidder is not the owner,
// the amount beats the standing bid and the bidder can pay for it.
func (uc *BidUseCase) PlaceBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error) {
	start := time.Now()

	if err := domain.ValidateAccountID(input.BidderID); err != nil {
		return nil, uc.reject(err)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(err)
	}

	var result *PlaceBidResult
	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, err = uc.placeBidTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, uc.reject(err)
	}

	if uc.metrics != nil {
		uc.metrics.BidsPlaced.WithLabelValues(string(result.Listing.Kind)).Inc()
		uc.metrics.BidDuration.Observe(time.Since(start).Seconds())
	}

	if result.Refund != nil && uc.payouts != nil {
		if err := uc.payouts.ProcessPayout(ctx, result.Refund.ID); err != nil {
			uc.logger.Warn().
				Err(err).
				Str("payout_id", result.Refund.ID).
				Str("listing_id", result.Refund.ListingID).
				Str("account_id", result.Refund.AccountID).
				Msg("refund left queued for retry")
		} else {
			result.Refund.Status = domain.PayoutStatusCompleted
		}
	}

	return result, nil
}

func (uc *BidUseCase) placeBidTx(ctx context.Context, tx Transaction, input PlaceBidInput) (*PlaceBidResult, error) {
	listing, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, input.ListingID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if !listing.AcceptsBids(now) {
		return nil, domain.ErrListingNotActive
	}

	if listing.OwnerID == input.BidderID {
		return nil, domain.ErrSelfBid
	}

	if minimum := listing.MinimumBid(); input.Amount < minimum {
		return nil, fmt.Errorf("%w: minimum is %s", domain.ErrBidTooLow, listing.Currency().Format(minimum))
	}

	var previous *domain.Bid
	if listing.HasBids() {
		previous, err = uc.bidRepo.GetActiveByListing(ctx, tx, listing.ID)
		if err != nil {
			return nil, fmt.Errorf("standing bid of listing %s: %w", listing.ID, err)
		}
	}

	raising := listing.IsHighestBidder(input.BidderID)
	charge := input.Amount
	description := fmt.Sprintf("Bid on %s", listing.Asset.Title)
	if raising {
		charge = input.Amount - listing.HighestAmount
		description = fmt.Sprintf("Raised bid on %s to %s", listing.Asset.Title, listing.Currency().Format(input.Amount))
	}

	if _, err := uc.ledger.DeductTx(ctx, tx, LedgerInput{
		AccountID:   input.BidderID,
		Currency:    listing.Currency(),
		Amount:      charge,
		Kind:        domain.KindSpentOnBid,
		RelatedID:   &listing.ID,
		Description: description,
	}); err != nil {
		return nil, err
	}

	result := &PlaceBidResult{Listing: listing}

	if previous != nil {
		if err := uc.bidRepo.UpdateStatus(ctx, tx, previous.ID, domain.BidStatusOutbid, now); err != nil {
			return nil, err
		}
		previous.Status = domain.BidStatusOutbid
		previous.UpdatedAt = now

		if err := uc.outboxRepo.Create(ctx, tx, domain.NewBidEvent(uc.idGen.Generate(), domain.EventTypeBidOutbid, previous, now)); err != nil {
			return nil, err
		}

		if !raising {
			result.Refund, err = uc.queueRefund(ctx, tx, listing, previous, now)
			if err != nil {
				return nil, err
			}
		}
	}

	bid := &domain.Bid{
		ID:        uc.idGen.Generate(),
		ListingID: listing.ID,
		BidderID:  input.BidderID,
		Amount:    input.Amount,
		Charged:   charge,
		Status:    domain.BidStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.bidRepo.Create(ctx, tx, bid); err != nil {
		return nil, err
	}

	bidder := input.BidderID
	listing.HighestAmount = input.Amount
	listing.HighestBidderID = &bidder
	listing.BidCount++
	listing.UpdatedAt = now
	if err := uc.listingRepo.Update(ctx, tx, listing); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.NewBidEvent(uc.idGen.Generate(), domain.EventTypeBidPlaced, bid, now)); err != nil {
		return nil, err
	}

	result.Bid = bid
	return result, nil
}

// queueRefund records the outbid bidder's refund in the payout queue. It is
// applied after commit so a refund failure never undoes the new bid.
func (uc *BidUseCase) queueRefund(ctx context.Context, tx Transaction, listing *domain.Listing, outbid *domain.Bid, now time.Time) (*domain.Payout, error) {
	payout := &domain.Payout{
		ID:        uc.idGen.Generate(),
		ListingID: listing.ID,
		BidID:     outbid.ID,
		AccountID: outbid.BidderID,
		Currency:  listing.Currency(),
		Amount:    outbid.Amount,
		Status:    domain.PayoutStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.payoutRepo.Create(ctx, tx, payout); err != nil {
		return nil, err
	}

	return payout, nil
}

func (uc *BidUseCase) reject(err error) error {
	if uc.metrics != nil {
		uc.metrics.BidsRejected.WithLabelValues(errorType(err)).Inc()
	}

	if !domain.IsValidationError(err) && !errors.Is(err, domain.ErrListingNotFound) {
		uc.logger.Error().Err(err).Msg("bid failed")
	}

	return err
}
