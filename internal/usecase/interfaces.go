package usecase

import (
	"context"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks github.com/iho/buttonmarket/internal/usecase Clock,PayoutProcessor,Locker

// AccountRepository defines data access for account balances.
type AccountRepository interface {
	// Create inserts a new account row. Returns domain.ErrAccountExists if one exists.
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string, currency domain.Currency) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string, currency domain.Currency) (*domain.Account, error)
	// Credit adds amount, creating the account on first use, and returns the updated row.
	Credit(ctx context.Context, tx Transaction, params BalanceChange) (*domain.Account, error)
	// Debit subtracts amount only if balance >= amount, otherwise returns domain.ErrInsufficientFunds.
	Debit(ctx context.Context, tx Transaction, params BalanceChange) (*domain.Account, error)
	ListByOwner(ctx context.Context, id string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// BalanceChange describes one conditional balance update.
type BalanceChange struct {
	AccountID string
	Currency  domain.Currency
	Amount    int64
	// CountEarned adds the credit to lifetime earned.
	CountEarned bool
	// CountSpent adds the debit to lifetime spent.
	CountSpent bool
	At         time.Time
}

// TransactionRepository defines data access for the append-only transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	// ListByAccount returns newest first. An empty currency matches both.
	ListByAccount(ctx context.Context, accountID string, currency domain.Currency, limit, offset int) ([]*domain.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error)
	SumByAccount(ctx context.Context, accountID string, currency domain.Currency) (TransactionSums, error)
}

// TransactionSums splits an account's log for reconciliation.
type TransactionSums struct {
	InitialGrant int64
	Movements    int64
	Count        int64
}

// ListingRepository defines data access for listings.
type ListingRepository interface {
	Create(ctx context.Context, tx Transaction, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Listing, error)
	// Update persists the mutable auction fields.
	Update(ctx context.Context, tx Transaction, listing *domain.Listing) error
	// ListActive returns active listings whose deadline is after now, soonest deadline first.
	ListActive(ctx context.Context, filter domain.ListingFilter, now time.Time) ([]*domain.Listing, error)
	// ListDue returns ids of active listings whose deadline is at or before now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]string, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Listing, error)
}

// BidRepository defines data access for bids.
type BidRepository interface {
	Create(ctx context.Context, tx Transaction, bid *domain.Bid) error
	// GetActiveByListing returns the standing bid or domain.ErrBidNotFound.
	GetActiveByListing(ctx context.Context, tx Transaction, listingID string) (*domain.Bid, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.BidStatus, updatedAt time.Time) error
	// ListByListing returns bids in acceptance order.
	ListByListing(ctx context.Context, listingID string) ([]*domain.Bid, error)
	ListByBidder(ctx context.Context, bidderID string, limit, offset int) ([]*domain.Bid, error)
}

// PayoutRepository defines data access for the refund retry queue.
type PayoutRepository interface {
	// Create enqueues a payout. A payout for the same (listing, bid) is left untouched.
	Create(ctx context.Context, tx Transaction, payout *domain.Payout) error
	GetByID(ctx context.Context, id string) (*domain.Payout, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Payout, error)
	MarkCompleted(ctx context.Context, tx Transaction, id string, attempts int, completedAt time.Time) error
	RecordFailure(ctx context.Context, id string, lastError string, at time.Time) error
	// ListPending returns ids of pending payouts, oldest first.
	ListPending(ctx context.Context, limit int) ([]string, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed with a retryable store error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// PayoutProcessor applies a queued refund.
type PayoutProcessor interface {
	ProcessPayout(ctx context.Context, payoutID string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}

// Locker guards work that only one replica may run at a time.
type Locker interface {
	// Acquire returns a release func, or ok=false if another holder owns the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
