package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultListingDuration is how long a listing accepts bids unless told otherwise
	DefaultListingDuration = 72 * time.Hour

	// DefaultInitialGrant is the onboarding balance in buttons
	DefaultInitialGrant = int64(100)

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessingMarker is stored under a key while its first request is in flight
	IdempotencyProcessingMarker = "processing"

	// DefaultSweepBatchSize bounds how many due listings one sweep settles
	DefaultSweepBatchSize = 100

	// DefaultPayoutBatchSize bounds how many pending payouts one poll drains
	DefaultPayoutBatchSize = 50
)
