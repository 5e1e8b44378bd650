package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already opened")
	ErrInvalidKind       = errors.New("transaction kind not allowed for this operation")

	// Auction errors
	ErrListingNotFound  = errors.New("listing not found")
	ErrListingNotActive = errors.New("listing is not accepting bids")
	ErrBidTooLow        = errors.New("bid is below the minimum acceptable amount")
	ErrSelfBid          = errors.New("owner cannot bid on own listing")
	ErrNotListingOwner  = errors.New("only the listing owner can do this")
	ErrListingHasBids   = errors.New("listing already has bids")
	ErrInvalidListing   = errors.New("invalid listing")
	ErrBidNotFound      = errors.New("bid not found")

	// Payout errors
	ErrPayoutNotFound = errors.New("payout not found")

	// Store errors
	ErrTransientStore = errors.New("transient store error")
)

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

// IsValidationError reports whether err is a caller-correctable condition
// that must not be retried.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInsufficientFunds, ErrBidTooLow,
		ErrListingNotActive, ErrSelfBid, ErrInvalidKind,
		ErrNotListingOwner, ErrListingHasBids, ErrInvalidListing,
		ErrInvalidCurrency, ErrAccountExists, ErrInvalidAccountID,
		ErrAmountTooLarge, ErrInvalidTitle, ErrInvalidDuration,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err names a missing entity.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrListingNotFound) ||
		errors.Is(err, ErrBidNotFound) ||
		errors.Is(err, ErrPayoutNotFound)
}
