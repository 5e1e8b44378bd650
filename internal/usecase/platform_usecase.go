package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/buttonmarket/internal/domain"
)

// ErrUnknownPackage is returned when a purchase names a package that is not sold.
var ErrUnknownPackage = errors.New("unknown button package")

// ButtonPackage is a fixed bundle of buttons sold by the platform.
type ButtonPackage struct {
	Buttons    int64
	PriceCents int64
}

// Price returns the package price in dollars.
func (p ButtonPackage) Price() decimal.Decimal {
	return domain.CurrencyUSD.ToDecimal(p.PriceCents)
}

// UnitPrice returns the price of one button in dollars, rounded to a tenth of a cent.
func (p ButtonPackage) UnitPrice() decimal.Decimal {
	return p.Price().DivRound(decimal.NewFromInt(p.Buttons), 3)
}

// DefaultPackages is the platform price list.
var DefaultPackages = []ButtonPackage{
	{Buttons: 50, PriceCents: 500},
	{Buttons: 100, PriceCents: 900},
	{Buttons: 250, PriceCents: 2000},
	{Buttons: 500, PriceCents: 3500},
}

// PlatformUseCase sells button packages. Payment capture happens before
// BuyPackage is called; paymentReference links the grant to it.
type PlatformUseCase struct {
	ledger   *LedgerUseCase
	packages []ButtonPackage
}

// NewPlatformUseCase creates a new PlatformUseCase.
func NewPlatformUseCase(ledger *LedgerUseCase, packages []ButtonPackage) *PlatformUseCase {
	if len(packages) == 0 {
		packages = DefaultPackages
	}

	return &PlatformUseCase{ledger: ledger, packages: packages}
}

// Packages returns the price list.
func (uc *PlatformUseCase) Packages() []ButtonPackage {
	out := make([]ButtonPackage, len(uc.packages))
	copy(out, uc.packages)
	return out
}

// BuyPackage grants the buttons of the package with the given size.
func (uc *PlatformUseCase) BuyPackage(ctx context.Context, accountID string, buttons int64, paymentReference string) (*LedgerResult, error) {
	pkg, ok := uc.find(buttons)
	if !ok {
		return nil, fmt.Errorf("%w: %d buttons", ErrUnknownPackage, buttons)
	}

	var related *string
	if paymentReference != "" {
		related = &paymentReference
	}

	return uc.ledger.Grant(ctx, LedgerInput{
		AccountID:   accountID,
		Currency:    domain.CurrencyButtons,
		Amount:      pkg.Buttons,
		Kind:        domain.KindPlatformPurchase,
		RelatedID:   related,
		Description: fmt.Sprintf("Purchased %d buttons for $%s", pkg.Buttons, pkg.Price().StringFixed(2)),
	})
}

func (uc *PlatformUseCase) find(buttons int64) (ButtonPackage, bool) {
	for _, p := range uc.packages {
		if p.Buttons == buttons {
			return p, true
		}
	}
	return ButtonPackage{}, false
}
