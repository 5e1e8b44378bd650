package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// Money is an amount with its minor units and display value.
type Money struct {
	Currency  string          `json:"currency"`
	Minor     int64           `json:"minor"`
	Value     decimal.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

// NewMoney renders amount minor units of c.
func NewMoney(c domain.Currency, amount int64) Money {
	return Money{
		Currency:  string(c),
		Minor:     amount,
		Value:     c.ToDecimal(amount),
		Formatted: c.Format(amount),
	}
}

// AccountResponse represents one currency wallet in API responses.
type AccountResponse struct {
	AccountID    string    `json:"account_id"`
	Currency     string    `json:"currency"`
	Balance      Money     `json:"balance"`
	InitialGrant int64     `json:"initial_grant"`
	Earned       Money     `json:"earned"`
	Spent        Money     `json:"spent"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountID:    a.ID,
		Currency:     string(a.Currency),
		Balance:      NewMoney(a.Currency, a.Balance),
		InitialGrant: a.InitialGrant,
		Earned:       NewMoney(a.Currency, a.Earned),
		Spent:        NewMoney(a.Currency, a.Spent),
		Version:      a.Version,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger log row in API responses.
type TransactionResponse struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	Amount       Money     `json:"amount"`
	Kind         string    `json:"kind"`
	RelatedID    *string   `json:"related_id,omitempty"`
	Description  string    `json:"description"`
	BalanceAfter Money     `json:"balance_after"`
	Sequence     int64     `json:"sequence"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Amount:       NewMoney(t.Currency, t.Amount),
		Kind:         string(t.Kind),
		RelatedID:    t.RelatedID,
		Description:  t.Description,
		BalanceAfter: NewMoney(t.Currency, t.BalanceAfter),
		Sequence:     t.Sequence,
		CreatedAt:    t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of the log.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int                    `json:"count"`
}

// LedgerResultResponse is the wallet after a movement and the row explaining it.
type LedgerResultResponse struct {
	Account     *AccountResponse     `json:"account"`
	Transaction *TransactionResponse `json:"transaction"`
}

// LedgerResultFromUseCase converts a ledger result to response.
func LedgerResultFromUseCase(r *usecase.LedgerResult) *LedgerResultResponse {
	return &LedgerResultResponse{
		Account:     AccountFromDomain(r.Account),
		Transaction: TransactionFromDomain(r.Transaction),
	}
}

// PackageResponse represents a platform button package.
type PackageResponse struct {
	Buttons   int64           `json:"buttons"`
	Price     Money           `json:"price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PackagesFromUseCase converts the price list to responses.
func PackagesFromUseCase(packages []usecase.ButtonPackage) []PackageResponse {
	result := make([]PackageResponse, len(packages))
	for i, p := range packages {
		result[i] = PackageResponse{
			Buttons:   p.Buttons,
			Price:     NewMoney(domain.CurrencyUSD, p.PriceCents),
			UnitPrice: p.UnitPrice(),
		}
	}
	return result
}

// ListingResponse represents a listing in API responses.
type ListingResponse struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"owner_id"`
	Kind            string     `json:"kind"`
	Title           string     `json:"title,omitempty"`
	Category        string     `json:"category,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	ButtonAmount    int64      `json:"button_amount,omitempty"`
	ReservePrice    Money      `json:"reserve_price"`
	HighestAmount   Money      `json:"highest_amount"`
	HighestBidderID *string    `json:"highest_bidder_id,omitempty"`
	BidCount        int64      `json:"bid_count"`
	Status          string     `json:"status"`
	Deadline        time.Time  `json:"deadline"`
	CreatedAt       time.Time  `json:"created_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

// ListingFromDomain converts domain listing to response.
func ListingFromDomain(l *domain.Listing) *ListingResponse {
	currency := l.Currency()
	return &ListingResponse{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		Kind:            string(l.Kind),
		Title:           l.Asset.Title,
		Category:        l.Asset.Category,
		ImageURL:        l.Asset.ImageURL,
		ButtonAmount:    l.Asset.ButtonAmount,
		ReservePrice:    NewMoney(currency, l.ReservePrice),
		HighestAmount:   NewMoney(currency, l.HighestAmount),
		HighestBidderID: l.HighestBidderID,
		BidCount:        l.BidCount,
		Status:          string(l.Status),
		Deadline:        l.Deadline,
		CreatedAt:       l.CreatedAt,
		SettledAt:       l.SettledAt,
	}
}

// ListingsFromDomain converts domain listings to responses.
func ListingsFromDomain(listings []*domain.Listing) []*ListingResponse {
	result := make([]*ListingResponse, len(listings))
	for i, l := range listings {
		result[i] = ListingFromDomain(l)
	}
	return result
}

// BidResponse represents a bid in API responses.
type BidResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Charged   int64     `json:"charged"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// BidFromDomain converts domain bid to response.
func BidFromDomain(b *domain.Bid) *BidResponse {
	return &BidResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Charged:   b.Charged,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

// BidsFromDomain converts domain bids to responses.
func BidsFromDomain(bids []*domain.Bid) []*BidResponse {
	result := make([]*BidResponse, len(bids))
	for i, b := range bids {
		result[i] = BidFromDomain(b)
	}
	return result
}

// PlaceBidResponse is the accepted bid and the listing it now leads.
type PlaceBidResponse struct {
	Listing *ListingResponse `json:"listing"`
	Bid     *BidResponse     `json:"bid"`
	// RefundPayoutID names the payout queued for the previous highest bidder.
	RefundPayoutID *string `json:"refund_payout_id,omitempty"`
}

// PlaceBidFromUseCase converts a bid result to response.
func PlaceBidFromUseCase(r *usecase.PlaceBidResult) *PlaceBidResponse {
	resp := &PlaceBidResponse{
		Listing: ListingFromDomain(r.Listing),
		Bid:     BidFromDomain(r.Bid),
	}
	if r.Refund != nil {
		id := r.Refund.ID
		resp.RefundPayoutID = &id
	}
	return resp
}

// SettlementResponse reports what a sweep did with one listing.
type SettlementResponse struct {
	ListingID string  `json:"listing_id"`
	Outcome   string  `json:"outcome"`
	WinnerID  *string `json:"winner_id,omitempty"`
	Amount    *Money  `json:"amount,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// SweepResponse summarises a sweep.
type SweepResponse struct {
	Settled []SettlementResponse `json:"settled"`
	Failed  int                  `json:"failed"`
}

// SweepFromUseCase converts settlement results to response.
func SweepFromUseCase(results []usecase.SettlementResult) *SweepResponse {
	resp := &SweepResponse{Settled: make([]SettlementResponse, len(results))}
	for i, r := range results {
		s := SettlementResponse{
			ListingID: r.ListingID,
			Outcome:   r.Outcome,
			WinnerID:  r.WinnerID,
		}
		if r.WinnerID != nil {
			amount := NewMoney(r.Currency, r.Amount)
			s.Amount = &amount
		}
		if r.Err != nil {
			s.Error = r.Err.Error()
			resp.Failed++
		}
		resp.Settled[i] = s
	}
	return resp
}

// DiscrepancyResponse is one wallet whose balance disagrees with its log.
type DiscrepancyResponse struct {
	AccountID         string `json:"account_id"`
	Currency          string `json:"currency"`
	RecordedBalance   int64  `json:"recorded_balance"`
	CalculatedBalance int64  `json:"calculated_balance"`
	Difference        int64  `json:"difference"`
	InitialGrant      int64  `json:"initial_grant"`
	LoggedGrant       int64  `json:"logged_grant"`
}

// AuctionDiscrepancyResponse is one listing whose bids disagree with its state.
type AuctionDiscrepancyResponse struct {
	ListingID   string `json:"listing_id"`
	ActiveBids  int    `json:"active_bids"`
	Description string `json:"description"`
}

// ReconciliationResponse represents a reconciliation report.
type ReconciliationResponse struct {
	Consistent         bool                         `json:"consistent"`
	TotalAccounts      int                          `json:"total_accounts"`
	ReconciledAccounts int                          `json:"reconciled_accounts"`
	Discrepancies      []DiscrepancyResponse        `json:"discrepancies"`
	Auctions           []AuctionDiscrepancyResponse `json:"auctions"`
	CheckedAt          time.Time                    `json:"checked_at"`
}

// ReconciliationFromUseCase converts a report to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		Consistent:         r.IsConsistent(),
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]DiscrepancyResponse, len(r.Discrepancies)),
		Auctions:           make([]AuctionDiscrepancyResponse, len(r.Auctions)),
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = DiscrepancyResponse{
			AccountID:         d.AccountID,
			Currency:          string(d.Currency),
			RecordedBalance:   d.RecordedBalance,
			CalculatedBalance: d.CalculatedBalance,
			Difference:        d.Difference,
			InitialGrant:      d.InitialGrant,
			LoggedGrant:       d.LoggedGrant,
		}
	}
	for i, a := range r.Auctions {
		resp.Auctions[i] = AuctionDiscrepancyResponse{
			ListingID:   a.ListingID,
			ActiveBids:  a.ActiveBids,
			Description: a.Description,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
