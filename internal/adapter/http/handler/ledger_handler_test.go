package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

type ledgerServiceStub struct {
	inputs []usecase.LedgerInput
	ops    []string
	err    error
	recent []*domain.Transaction
}

func (s *ledgerServiceStub) apply(op string, input usecase.LedgerInput) (*usecase.LedgerResult, error) {
	s.ops = append(s.ops, op)
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.LedgerResult{
		Account:     &domain.Account{ID: input.AccountID, Currency: input.Currency, Balance: input.Amount},
		Transaction: &domain.Transaction{ID: "txn-1", AccountID: input.AccountID, Currency: input.Currency, Amount: input.Amount, Kind: input.Kind},
	}, nil
}

func (s *ledgerServiceStub) Grant(ctx context.Context, input usecase.LedgerInput) (*usecase.LedgerResult, error) {
	return s.apply("grant", input)
}

func (s *ledgerServiceStub) Deduct(ctx context.Context, input usecase.LedgerInput) (*usecase.LedgerResult, error) {
	return s.apply("deduct", input)
}

func (s *ledgerServiceStub) Refund(ctx context.Context, input usecase.LedgerInput) (*usecase.LedgerResult, error) {
	return s.apply("refund", input)
}

func (s *ledgerServiceStub) ListRecentTransactions(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func TestLedgerHandler_Primitives(t *testing.T) {
	stub := &ledgerServiceStub{}
	h := NewLedgerHandler(stub)
	params := map[string]string{"id": "alice"}

	rec := httptest.NewRecorder()
	h.Grant(rec, newRequest(t, http.MethodPost, "/accounts/alice/grant",
		dto.LedgerRequest{Currency: "BTN", Amount: decimal.NewFromInt(40), Kind: "platform-purchase", Description: "promo"}, params, admin()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Deduct(rec, newRequest(t, http.MethodPost, "/accounts/alice/deduct",
		dto.LedgerRequest{Currency: "BTN", Amount: decimal.NewFromInt(5), Kind: "spent-on-bid"}, params, admin()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Refund(rec, newRequest(t, http.MethodPost, "/accounts/alice/refund",
		dto.LedgerRequest{Currency: "USD", Amount: decimal.RequireFromString("0.50")}, params, admin()))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"grant", "deduct", "refund"}, stub.ops)
	assert.Equal(t, domain.KindPlatformPurchase, stub.inputs[0].Kind)
	assert.Equal(t, "promo", stub.inputs[0].Description)
	assert.Equal(t, int64(50), stub.inputs[2].Amount)
	assert.Equal(t, domain.CurrencyUSD, stub.inputs[2].Currency)
}

func TestLedgerHandler_Errors(t *testing.T) {
	stub := &ledgerServiceStub{err: domain.ErrInsufficientFunds}
	h := NewLedgerHandler(stub)
	params := map[string]string{"id": "alice"}

	rec := httptest.NewRecorder()
	h.Deduct(rec, newRequest(t, http.MethodPost, "/accounts/alice/deduct",
		dto.LedgerRequest{Currency: "BTN", Amount: decimal.NewFromInt(500), Kind: "spent-on-bid"}, params, admin()))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	h.Grant(rec, newRequest(t, http.MethodPost, "/accounts/alice/grant",
		dto.LedgerRequest{Currency: "BTN", Amount: decimal.NewFromInt(-3)}, params, admin()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, stub.ops, 1)
}

func TestLedgerHandler_Deposit(t *testing.T) {
	stub := &ledgerServiceStub{}
	h := NewLedgerHandler(stub)

	rec := httptest.NewRecorder()
	h.Deposit(rec, newRequest(t, http.MethodPost, "/accounts/bob/deposit",
		dto.DepositRequest{Amount: decimal.RequireFromString("25.00"), PaymentReference: "pay_9"}, map[string]string{"id": "bob"}, admin()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, stub.inputs, 1)
	assert.Equal(t, domain.KindDeposit, stub.inputs[0].Kind)
	assert.Equal(t, int64(2500), stub.inputs[0].Amount)

	rec = httptest.NewRecorder()
	h.Deposit(rec, newRequest(t, http.MethodPost, "/accounts/bob/deposit",
		dto.DepositRequest{Amount: decimal.RequireFromString("25.00")}, map[string]string{"id": "bob"}, admin()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandler_Activity(t *testing.T) {
	stub := &ledgerServiceStub{recent: []*domain.Transaction{
		{ID: "txn-3", Currency: domain.CurrencyButtons, Amount: 30},
		{ID: "txn-2", Currency: domain.CurrencyButtons, Amount: -30},
		{ID: "txn-1", Currency: domain.CurrencyButtons, Amount: 100},
	}}
	h := NewLedgerHandler(stub)

	rec := httptest.NewRecorder()
	h.Activity(rec, newRequest(t, http.MethodGet, "/activity?limit=2", nil, nil, member("bob")))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ListTransactionsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "txn-3", resp.Transactions[0].ID)
}
