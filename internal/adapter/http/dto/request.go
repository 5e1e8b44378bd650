package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// OpenAccountRequest opens an account with its onboarding grant.
type OpenAccountRequest struct {
	// InitialGrant defaults to the configured grant when omitted.
	InitialGrant *int64 `json:"initial_grant,omitempty" validate:"omitempty,gte=0"`
}

// LedgerRequest drives the admin grant, deduct and refund primitives.
// Amount is in display units: buttons, or dollars for USD.
type LedgerRequest struct {
	Currency    string          `json:"currency" validate:"required,oneof=BTN USD btn usd"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind" validate:"omitempty,max=32"`
	Description string          `json:"description" validate:"max=500"`
	RelatedID   string          `json:"related_id,omitempty" validate:"max=128"`
}

// ToUseCaseInput converts to use case input.
func (r *LedgerRequest) ToUseCaseInput(accountID string) (usecase.LedgerInput, error) {
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return usecase.LedgerInput{}, err
	}

	amount, err := currency.FromDecimal(r.Amount)
	if err != nil {
		return usecase.LedgerInput{}, err
	}

	input := usecase.LedgerInput{
		AccountID:   accountID,
		Currency:    currency,
		Kind:        domain.TransactionKind(r.Kind),
		Description: r.Description,
		Amount:      amount,
	}
	if r.RelatedID != "" {
		relatedID := r.RelatedID
		input.RelatedID = &relatedID
	}

	return input, nil
}

// DepositRequest credits a USD wallet from an external payment.
type DepositRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"payment_reference" validate:"required,max=128"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(accountID string) (usecase.LedgerInput, error) {
	amount, err := domain.CurrencyUSD.FromDecimal(r.Amount)
	if err != nil {
		return usecase.LedgerInput{}, err
	}

	reference := r.PaymentReference
	return usecase.LedgerInput{
		AccountID:   accountID,
		Currency:    domain.CurrencyUSD,
		Kind:        domain.KindDeposit,
		Amount:      amount,
		RelatedID:   &reference,
		Description: fmt.Sprintf("Deposited %s", domain.CurrencyUSD.Format(amount)),
	}, nil
}

// PurchasePackageRequest buys a platform button package.
type PurchasePackageRequest struct {
	Buttons          int64  `json:"buttons" validate:"required,gt=0"`
	PaymentReference string `json:"payment_reference" validate:"required,max=128"`
}

// CreateItemListingRequest lists a clothing item for buttons.
type CreateItemListingRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Category     string `json:"category" validate:"max=64"`
	ImageURL     string `json:"image_url" validate:"omitempty,url,max=2048"`
	ReservePrice int64  `json:"reserve_price" validate:"required,gt=0"`
	// Duration is a Go duration string, e.g. "48h".
	Duration string `json:"duration,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateItemListingRequest) ToUseCaseInput(ownerID string) (usecase.CreateItemListingInput, error) {
	duration, err := parseDuration(r.Duration)
	if err != nil {
		return usecase.CreateItemListingInput{}, err
	}

	return usecase.CreateItemListingInput{
		OwnerID:      ownerID,
		Title:        r.Title,
		Category:     r.Category,
		ImageURL:     r.ImageURL,
		ReservePrice: r.ReservePrice,
		Duration:     duration,
	}, nil
}

// CreateButtonLotRequest auctions buttons for cash. Reserve is in dollars.
type CreateButtonLotRequest struct {
	ButtonAmount int64           `json:"button_amount" validate:"required,gt=0"`
	Reserve      decimal.Decimal `json:"reserve"`
	Duration     string          `json:"duration,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateButtonLotRequest) ToUseCaseInput(ownerID string) (usecase.CreateButtonLotInput, error) {
	reserve, err := domain.CurrencyUSD.FromDecimal(r.Reserve)
	if err != nil {
		return usecase.CreateButtonLotInput{}, err
	}

	duration, err := parseDuration(r.Duration)
	if err != nil {
		return usecase.CreateButtonLotInput{}, err
	}

	return usecase.CreateButtonLotInput{
		OwnerID:      ownerID,
		ButtonAmount: r.ButtonAmount,
		ReserveCents: reserve,
		Duration:     duration,
	}, nil
}

// PlaceBidRequest bids on a listing, in the listing's display unit.
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *PlaceBidRequest) ToUseCaseInput(bidderID string, listing *domain.Listing) (usecase.PlaceBidInput, error) {
	amount, err := listing.Currency().FromDecimal(r.Amount)
	if err != nil {
		return usecase.PlaceBidInput{}, err
	}

	return usecase.PlaceBidInput{
		BidderID:  bidderID,
		ListingID: listing.ID,
		Amount:    amount,
	}, nil
}

// SweepRequest optionally bounds a sweep.
type SweepRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDuration, s)
	}
	return d, domain.ValidateDuration(d)
}
