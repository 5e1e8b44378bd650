package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// ListingUseCase creates, cancels and reads listings.
type ListingUseCase struct {
	txManager   TransactionManager
	listingRepo ListingRepository
	bidRepo     BidRepository
	outboxRepo  OutboxRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	metrics     *metrics.Metrics
	duration    time.Duration
}

// NewListingUseCase creates a new ListingUseCase. A zero duration uses DefaultListingDuration.
func NewListingUseCase(
	txManager TransactionManager,
	listingRepo ListingRepository,
	bidRepo BidRepository,
	outboxRepo OutboxRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
	duration time.Duration,
) *ListingUseCase {
	if duration <= 0 {
		duration = DefaultListingDuration
	}

	return &ListingUseCase{
		txManager:   txManager,
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		outboxRepo:  outboxRepo,
		ledger:      ledger,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		metrics:     metrics,
		duration:    duration,
	}
}

// CreateItemListingInput represents input for listing a clothing item.
type CreateItemListingInput struct {
	OwnerID      string
	Title        string
	Category     string
	ImageURL     string
	ReservePrice int64
	Duration     time.Duration
}

// CreateButtonLotInput represents input for auctioning buttons for cash.
type CreateButtonLotInput struct {
	OwnerID      string
	ButtonAmount int64
	ReserveCents int64
	Duration     time.Duration
}

// CreateItemListing lists an item for buttons.
func (uc *ListingUseCase) CreateItemListing(ctx context.Context, input CreateItemListingInput) (*domain.Listing, error) {
	return uc.create(ctx, input.OwnerID, domain.ListingKindItem, domain.Asset{
		Title:    input.Title,
		Category: input.Category,
		ImageURL: input.ImageURL,
	}, input.ReservePrice, input.Duration)
}

// CreateButtonLot auctions buttons for USD. The buttons are escrowed from the
// seller in the same transaction and returned if the lot does not sell.
func (uc *ListingUseCase) CreateButtonLot(ctx context.Context, input CreateButtonLotInput) (*domain.Listing, error) {
	return uc.create(ctx, input.OwnerID, domain.ListingKindButtonLot, domain.Asset{
		Title:        fmt.Sprintf("%d buttons", input.ButtonAmount),
		ButtonAmount: input.ButtonAmount,
	}, input.ReserveCents, input.Duration)
}

func (uc *ListingUseCase) create(
	ctx context.Context,
	ownerID string,
	kind domain.ListingKind,
	asset domain.Asset,
	reserve int64,
	duration time.Duration,
) (*domain.Listing, error) {
	if err := domain.ValidateAccountID(ownerID); err != nil {
		return nil, err
	}

	if err := domain.ValidateAsset(kind, asset); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(reserve); err != nil {
		return nil, fmt.Errorf("reserve price: %w", err)
	}

	if duration == 0 {
		duration = uc.duration
	}

	if err := domain.ValidateDuration(duration); err != nil {
		return nil, err
	}

	var listing *domain.Listing
	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		now := uc.clock.Now()
		listing = &domain.Listing{
			ID:           uc.idGen.Generate(),
			OwnerID:      ownerID,
			Kind:         kind,
			Asset:        asset,
			ReservePrice: reserve,
			Status:       domain.ListingStatusActive,
			Deadline:     now.Add(duration),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := uc.listingRepo.Create(ctx, tx, listing); err != nil {
			return err
		}

		if kind == domain.ListingKindButtonLot {
			_, err := uc.ledger.DeductTx(ctx, tx, LedgerInput{
				AccountID:   ownerID,
				Currency:    domain.CurrencyButtons,
				Amount:      asset.ButtonAmount,
				Kind:        domain.KindUserPurchase,
				RelatedID:   &listing.ID,
				Description: fmt.Sprintf("Listed %d buttons for sale", asset.ButtonAmount),
				Escrow:      true,
			})
			if err != nil {
				return err
			}
		}

		return uc.outboxRepo.Create(ctx, tx, domain.NewListingEvent(uc.idGen.Generate(), domain.EventTypeListingCreated, listing, now))
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ListingsCreated.WithLabelValues(string(kind)).Inc()
	}

	return listing, nil
}

// CancelListing withdraws a listing that has no bids and is still open.
func (uc *ListingUseCase) CancelListing(ctx context.Context, ownerID, listingID string) (*domain.Listing, error) {
	var listing *domain.Listing
	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		listing, err = uc.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		if err := listing.CanCancel(ownerID, now); err != nil {
			return err
		}

		listing.Status = domain.ListingStatusCancelled
		listing.UpdatedAt = now
		listing.SettledAt = &now
		if err := uc.listingRepo.Update(ctx, tx, listing); err != nil {
			return err
		}

		if err := uc.returnEscrow(ctx, tx, listing, "Cancelled listing"); err != nil {
			return err
		}

		return uc.outboxRepo.Create(ctx, tx, domain.NewListingEvent(uc.idGen.Generate(), domain.EventTypeListingCancelled, listing, now))
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ListingsSettled.WithLabelValues(string(domain.ListingStatusCancelled)).Inc()
	}

	return listing, nil
}

// returnEscrow gives a button lot's escrowed buttons back to the seller.
func (uc *ListingUseCase) returnEscrow(ctx context.Context, tx Transaction, listing *domain.Listing, reason string) error {
	if listing.Kind != domain.ListingKindButtonLot {
		return nil
	}

	_, err := uc.ledger.RefundTx(ctx, tx, LedgerInput{
		AccountID:   listing.OwnerID,
		Currency:    domain.CurrencyButtons,
		Amount:      listing.Asset.ButtonAmount,
		RelatedID:   &listing.ID,
		Description: fmt.Sprintf("%s: %d buttons returned", reason, listing.Asset.ButtonAmount),
	})
	return err
}

// GetListing returns one listing.
func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	return listing, storeError(err)
}

// ListActiveListings returns listings still accepting bids.
func (uc *ListingUseCase) ListActiveListings(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidListing, filter.Kind)
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	listings, err := uc.listingRepo.ListActive(ctx, filter, uc.clock.Now())
	return listings, storeError(err)
}

// ListBids returns a listing's bids in acceptance order.
func (uc *ListingUseCase) ListBids(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	if _, err := uc.listingRepo.GetByID(ctx, listingID); err != nil {
		return nil, storeError(err)
	}

	bids, err := uc.bidRepo.ListByListing(ctx, listingID)
	return bids, storeError(err)
}

// ListBidsByBidder returns an account's bids, newest first.
func (uc *ListingUseCase) ListBidsByBidder(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	bids, err := uc.bidRepo.ListByBidder(ctx, bidderID, limit, offset)
	return bids, storeError(err)
}
