package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrInvalidTitle     = errors.New("invalid listing title")
	ErrInvalidDuration  = errors.New("invalid listing duration")
)

// Validation constants
const (
	MaxAccountIDLength   = 128
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxAmount            = int64(1_000_000_000_000)
	MinListingDuration   = time.Minute
	MaxListingDuration   = 30 * 24 * time.Hour
	DefaultPageSize      = 50
	MaxPageSize          = 1000
)

// ValidateAccountID validates an account id supplied by the identity provider.
func ValidateAccountID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidAccountID)
	}
	if trimmed != id {
		return fmt.Errorf("%w: surrounding whitespace", ErrInvalidAccountID)
	}
	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidAccountID, MaxAccountIDLength)
	}
	return nil
}

// ValidateAmount validates an amount in minor units.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum is %d", ErrAmountTooLarge, MaxAmount)
	}
	return nil
}

// ValidateDescription validates a transaction description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidListing, MaxDescriptionLength)
	}
	return nil
}

// ValidateAsset validates the catalog data of a listing of the given kind.
func ValidateAsset(kind ListingKind, asset Asset) error {
	switch kind {
	case ListingKindItem:
		title := strings.TrimSpace(asset.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrInvalidTitle)
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidTitle, MaxTitleLength)
		}
	case ListingKindButtonLot:
		if err := ValidateAmount(asset.ButtonAmount); err != nil {
			return fmt.Errorf("button amount: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidListing, kind)
	}
	return nil
}

// ValidateDuration validates a listing's bidding window.
func ValidateDuration(d time.Duration) error {
	if d < MinListingDuration || d > MaxListingDuration {
		return fmt.Errorf("%w: must be between %s and %s", ErrInvalidDuration, MinListingDuration, MaxListingDuration)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
