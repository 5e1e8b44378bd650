package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
)

const reconcilePageSize = 500

// ReconciliationUseCase checks the ledger and auction invariants against
// stored data.
type ReconciliationUseCase struct {
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	listingRepo     ListingRepository
	bidRepo         BidRepository
	clock           Clock
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	listingRepo ListingRepository,
	bidRepo BidRepository,
	clock Clock,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		listingRepo:     listingRepo,
		bidRepo:         bidRepo,
		clock:           clock,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	Currency          domain.Currency
	RecordedBalance   int64
	CalculatedBalance int64
	Difference        int64
	InitialGrant      int64
	LoggedGrant       int64
	IsReconciled      bool
	LastChecked       time.Time
}

// AuctionDiscrepancy describes a listing whose bids disagree with its state.
type AuctionDiscrepancy struct {
	ListingID   string
	ActiveBids  int
	Description string
}

// ReconcileAccount recomputes one wallet from its transaction log.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string, currency domain.Currency) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID, currency)
	if err != nil {
		return nil, storeError(err)
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	sums, err := uc.transactionRepo.SumByAccount(ctx, account.ID, account.Currency)
	if err != nil {
		return nil, storeError(err)
	}

	calculated := account.InitialGrant + sums.Movements

	return &ReconciliationResult{
		AccountID:         account.ID,
		Currency:          account.Currency,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        account.Balance - calculated,
		InitialGrant:      account.InitialGrant,
		LoggedGrant:       sums.InitialGrant,
		IsReconciled:      account.Balance >= 0 && account.Balance == calculated && sums.InitialGrant == account.InitialGrant,
		LastChecked:       uc.clock.Now(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, storeError(err)
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s/%s: %w", account.ID, account.Currency, err)
			}
			results = append(results, result)
		}

		if len(accounts) < reconcilePageSize {
			return results, nil
		}
	}
}

// CheckAuctions verifies that every listing with bids has exactly one active
// bid and that it matches the listing's highest amount and bidder. Settled
// listings must have exactly one won bid instead. Within a run of
// consecutive bids by one bidder the charges must add up to the run's
// latest amount, since raising a standing bid debits only the increase.
func (uc *ReconciliationUseCase) CheckAuctions(ctx context.Context) ([]AuctionDiscrepancy, error) {
	var discrepancies []AuctionDiscrepancy

	for offset := 0; ; offset += reconcilePageSize {
		listings, err := uc.listingRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, storeError(err)
		}

		for _, listing := range listings {
			if !listing.HasBids() {
				continue
			}

			bids, err := uc.bidRepo.ListByListing(ctx, listing.ID)
			if err != nil {
				return nil, storeError(err)
			}

			if d, ok := checkListingBids(listing, bids); !ok {
				discrepancies = append(discrepancies, d)
			}
		}

		if len(listings) < reconcilePageSize {
			return discrepancies, nil
		}
	}
}

func checkListingBids(listing *domain.Listing, bids []*domain.Bid) (AuctionDiscrepancy, bool) {
	want := domain.BidStatusActive
	if listing.Status == domain.ListingStatusSold {
		want = domain.BidStatusWon
	}

	var (
		standing  []*domain.Bid
		last      int64
		runBidder string
		committed int64
	)
	for _, b := range bids {
		if b.Amount <= last {
			return AuctionDiscrepancy{
				ListingID:   listing.ID,
				Description: fmt.Sprintf("bid %s amount %d does not exceed previous %d", b.ID, b.Amount, last),
			}, false
		}
		last = b.Amount

		if b.BidderID != runBidder {
			runBidder, committed = b.BidderID, 0
		}
		committed += b.Charged
		if committed != b.Amount {
			return AuctionDiscrepancy{
				ListingID:   listing.ID,
				Description: fmt.Sprintf("bidder %s has %d committed for bid %s of %d", b.BidderID, committed, b.ID, b.Amount),
			}, false
		}

		if b.Status == want {
			standing = append(standing, b)
		}
	}

	if len(standing) != 1 {
		return AuctionDiscrepancy{
			ListingID:   listing.ID,
			ActiveBids:  len(standing),
			Description: fmt.Sprintf("expected exactly one %s bid", want),
		}, false
	}

	b := standing[0]
	if b.Amount != listing.HighestAmount || !listing.IsHighestBidder(b.BidderID) {
		return AuctionDiscrepancy{
			ListingID:   listing.ID,
			ActiveBids:  1,
			Description: fmt.Sprintf("%s bid %s (%d) does not match listing highest %d", want, b.ID, b.Amount, listing.HighestAmount),
		}, false
	}

	return AuctionDiscrepancy{}, true
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	Auctions           []AuctionDiscrepancy
	CheckedAt          time.Time
}

// IsConsistent reports whether no discrepancy was found.
func (r *ReconciliationReport) IsConsistent() bool {
	return len(r.Discrepancies) == 0 && len(r.Auctions) == 0
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	auctions, err := uc.CheckAuctions(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		Auctions:      auctions,
		CheckedAt:     uc.clock.Now(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
