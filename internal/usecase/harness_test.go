package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/adapter/repository/memory"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/clock"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
	"github.com/iho/buttonmarket/internal/usecase"
	"github.com/iho/buttonmarket/internal/usecase/mocks"
)

var testStart = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	store       *memory.Store
	clock       *clock.ManualClock
	metrics     *metrics.Metrics
	accounts    *memory.AccountRepository
	txns        *memory.TransactionRepository
	listingRepo *memory.ListingRepository
	bidRepo     *memory.BidRepository
	payoutRepo  *memory.PayoutRepository
	outbox      *memory.OutboxRepository

	ledger    *usecase.LedgerUseCase
	platform  *usecase.PlatformUseCase
	listings  *usecase.ListingUseCase
	bids      *usecase.BidUseCase
	payouts   *usecase.PayoutUseCase
	lifecycle *usecase.LifecycleUseCase
	recon     *usecase.ReconciliationUseCase
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	payouts usecase.PayoutProcessor
	noQueue bool
}

// withPayoutProcessor replaces the bid engine's post-commit refund processor.
func withPayoutProcessor(p usecase.PayoutProcessor) harnessOption {
	return func(c *harnessConfig) { c.payouts = p }
}

// withoutImmediateRefunds leaves queued refunds to ProcessPending.
func withoutImmediateRefunds() harnessOption {
	return func(c *harnessConfig) { c.noQueue = true }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	var cfg harnessConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	store := memory.NewStore()
	h := &harness{
		store:       store,
		clock:       clock.NewManual(testStart),
		metrics:     metrics.New(prometheus.NewRegistry()),
		accounts:    memory.NewAccountRepository(store),
		txns:        memory.NewTransactionRepository(store),
		listingRepo: memory.NewListingRepository(store),
		bidRepo:     memory.NewBidRepository(store),
		payoutRepo:  memory.NewPayoutRepository(store),
		outbox:      memory.NewOutboxRepository(store),
	}

	txManager := memory.NewTxManager(store)
	idGen := mocks.NewMockIDGenerator()
	logger := zerolog.Nop()

	h.ledger = usecase.NewLedgerUseCase(txManager, h.accounts, h.txns, h.outbox, idGen, h.clock, nil, h.metrics)
	h.platform = usecase.NewPlatformUseCase(h.ledger, nil)
	h.listings = usecase.NewListingUseCase(txManager, h.listingRepo, h.bidRepo, h.outbox, h.ledger, idGen, h.clock, nil, h.metrics, 0)
	h.payouts = usecase.NewPayoutUseCase(txManager, h.payoutRepo, h.outbox, h.ledger, idGen, h.clock, nil, h.metrics, logger)

	var processor usecase.PayoutProcessor = h.payouts
	if cfg.payouts != nil {
		processor = cfg.payouts
	}
	if cfg.noQueue {
		processor = nil
	}

	h.bids = usecase.NewBidUseCase(txManager, h.listingRepo, h.bidRepo, h.payoutRepo, h.outbox, h.ledger, processor, idGen, h.clock, nil, h.metrics, logger)
	h.lifecycle = usecase.NewLifecycleUseCase(txManager, h.listingRepo, h.bidRepo, h.outbox, h.ledger, idGen, nil, h.metrics, logger)
	h.recon = usecase.NewReconciliationUseCase(h.accounts, h.txns, h.listingRepo, h.bidRepo, h.clock)

	return h
}

// fund gives an account buttons through a platform purchase.
func (h *harness) fund(t *testing.T, accountID string, currency domain.Currency, amount int64) {
	t.Helper()

	kind := domain.KindPlatformPurchase
	if currency == domain.CurrencyUSD {
		kind = domain.KindDeposit
	}

	_, err := h.ledger.Grant(context.Background(), usecase.LedgerInput{
		AccountID:   accountID,
		Currency:    currency,
		Amount:      amount,
		Kind:        kind,
		Description: "test funding",
	})
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, accountID string, currency domain.Currency) int64 {
	t.Helper()

	account, err := h.ledger.GetAccountBalance(context.Background(), accountID, currency)
	if err != nil {
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
		return 0
	}
	return account.Balance
}

func (h *harness) itemListing(t *testing.T, ownerID string, reserve int64) *domain.Listing {
	t.Helper()

	listing, err := h.listings.CreateItemListing(context.Background(), usecase.CreateItemListingInput{
		OwnerID:      ownerID,
		Title:        "Vintage denim jacket",
		Category:     "outerwear",
		ReservePrice: reserve,
	})
	require.NoError(t, err)
	return listing
}

func (h *harness) transactionCount(t *testing.T) int {
	t.Helper()

	txns, err := h.txns.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	return len(txns)
}

func (h *harness) requireConsistent(t *testing.T) {
	t.Helper()

	report, err := h.recon.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Discrepancies)
	require.Empty(t, report.Auctions)
	require.True(t, report.IsConsistent())
}
