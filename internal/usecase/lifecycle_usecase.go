package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// Settlement outcomes
const (
	OutcomeSold    = "sold"
	OutcomeExpired = "expired"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// SettlementResult reports what a sweep did with one listing.
type SettlementResult struct {
	ListingID string
	Outcome   string
	WinnerID  *string
	Amount    int64
	Currency  domain.Currency
	Err       error
}

// LifecycleUseCase moves listings past their deadline to sold or expired.
type LifecycleUseCase struct {
	txManager   TransactionManager
	listingRepo ListingRepository
	bidRepo     BidRepository
	outboxRepo  OutboxRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewLifecycleUseCase creates a new LifecycleUseCase.
func NewLifecycleUseCase(
	txManager TransactionManager,
	listingRepo ListingRepository,
	bidRepo BidRepository,
	outboxRepo OutboxRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		txManager:   txManager,
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		outboxRepo:  outboxRepo,
		ledger:      ledger,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger,
	}
}

// SweepExpiredListings settles up to limit listings whose deadline is at or
// before now. A failure on one listing is reported in its result and does not
// stop the sweep. Running it again over settled listings does nothing.
func (uc *LifecycleUseCase) SweepExpiredListings(ctx context.Context, now time.Time, limit int) ([]SettlementResult, error) {
	start := time.Now()

	if limit <= 0 {
		limit = DefaultSweepBatchSize
	}

	ids, err := uc.listingRepo.ListDue(ctx, now, limit)
	if err != nil {
		return nil, storeError(err)
	}

	results := make([]SettlementResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := uc.SettleListing(ctx, id, now)
		if result.Err != nil {
			uc.logger.Error().Err(result.Err).Str("listing_id", id).Msg("settlement failed")
		}
		results = append(results, result)
	}

	if uc.metrics != nil {
		uc.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}

	if len(results) > 0 {
		uc.logger.Info().Int("listings", len(results)).Time("now", now).Msg("swept expired listings")
	}

	return results, nil
}

// SettleListing applies the deadline transition of one listing in a single
// transaction. Listings that are terminal or not yet due are skipped.
func (uc *LifecycleUseCase) SettleListing(ctx context.Context, listingID string, now time.Time) SettlementResult {
	result := SettlementResult{ListingID: listingID, Outcome: OutcomeSkipped}

	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		result = SettlementResult{ListingID: listingID, Outcome: OutcomeSkipped}

		listing, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
		if err != nil {
			return err
		}
		result.Currency = listing.Currency()

		if !listing.IsDue(now) {
			return nil
		}

		if listing.HasBids() {
			return uc.sell(ctx, tx, listing, now, &result)
		}

		return uc.expire(ctx, tx, listing, now, &result)
	})
	if err != nil {
		return SettlementResult{ListingID: listingID, Outcome: OutcomeFailed, Err: err}
	}

	if uc.metrics != nil && result.Outcome != OutcomeSkipped {
		uc.metrics.ListingsSettled.WithLabelValues(result.Outcome).Inc()
	}

	return result
}

func (uc *LifecycleUseCase) sell(ctx context.Context, tx Transaction, listing *domain.Listing, now time.Time, result *SettlementResult) error {
	winning, err := uc.bidRepo.GetActiveByListing(ctx, tx, listing.ID)
	if err != nil {
		return fmt.Errorf("winning bid of listing %s: %w", listing.ID, err)
	}

	if _, err := uc.ledger.GrantTx(ctx, tx, LedgerInput{
		AccountID:   listing.OwnerID,
		Currency:    listing.Currency(),
		Amount:      listing.HighestAmount,
		Kind:        domain.KindEarnedFromSale,
		RelatedID:   &listing.ID,
		Description: fmt.Sprintf("Sold %s", listing.Asset.Title),
	}); err != nil {
		return err
	}

	if listing.Kind == domain.ListingKindButtonLot {
		if _, err := uc.ledger.GrantTx(ctx, tx, LedgerInput{
			AccountID:   winning.BidderID,
			Currency:    domain.CurrencyButtons,
			Amount:      listing.Asset.ButtonAmount,
			Kind:        domain.KindUserPurchase,
			RelatedID:   &listing.ID,
			Description: fmt.Sprintf("Won %d buttons for %s", listing.Asset.ButtonAmount, listing.Currency().Format(listing.HighestAmount)),
		}); err != nil {
			return err
		}
	}

	if err := uc.bidRepo.UpdateStatus(ctx, tx, winning.ID, domain.BidStatusWon, now); err != nil {
		return err
	}
	winning.Status = domain.BidStatusWon

	if err := uc.finish(ctx, tx, listing, domain.ListingStatusSold, domain.EventTypeListingSold, now); err != nil {
		return err
	}

	result.Outcome = OutcomeSold
	result.WinnerID = listing.HighestBidderID
	result.Amount = listing.HighestAmount
	return nil
}

func (uc *LifecycleUseCase) expire(ctx context.Context, tx Transaction, listing *domain.Listing, now time.Time, result *SettlementResult) error {
	if listing.Kind == domain.ListingKindButtonLot {
		if _, err := uc.ledger.RefundTx(ctx, tx, LedgerInput{
			AccountID:   listing.OwnerID,
			Currency:    domain.CurrencyButtons,
			Amount:      listing.Asset.ButtonAmount,
			RelatedID:   &listing.ID,
			Description: fmt.Sprintf("Listing expired: %d buttons returned", listing.Asset.ButtonAmount),
		}); err != nil {
			return err
		}
	}

	if err := uc.finish(ctx, tx, listing, domain.ListingStatusExpired, domain.EventTypeListingExpired, now); err != nil {
		return err
	}

	result.Outcome = OutcomeExpired
	return nil
}

func (uc *LifecycleUseCase) finish(ctx context.Context, tx Transaction, listing *domain.Listing, status domain.ListingStatus, eventType string, now time.Time) error {
	listing.Status = status
	listing.UpdatedAt = now
	listing.SettledAt = &now

	if err := uc.listingRepo.Update(ctx, tx, listing); err != nil {
		return err
	}

	return uc.outboxRepo.Create(ctx, tx, domain.NewListingEvent(uc.idGen.Generate(), eventType, listing, now))
}
