package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

type platformServiceStub struct {
	account   string
	reference string
}

func (s *platformServiceStub) Packages() []usecase.ButtonPackage {
	return usecase.DefaultPackages
}

func (s *platformServiceStub) BuyPackage(ctx context.Context, accountID string, buttons int64, paymentReference string) (*usecase.LedgerResult, error) {
	if buttons != 250 {
		return nil, fmt.Errorf("%w: %d buttons", usecase.ErrUnknownPackage, buttons)
	}
	s.account, s.reference = accountID, paymentReference
	return &usecase.LedgerResult{
		Account:     &domain.Account{ID: accountID, Currency: domain.CurrencyButtons, Balance: 350},
		Transaction: &domain.Transaction{ID: "txn-1", AccountID: accountID, Currency: domain.CurrencyButtons, Amount: 250, Kind: domain.KindPlatformPurchase},
	}, nil
}

func TestPlatformHandler_Packages(t *testing.T) {
	h := NewPlatformHandler(&platformServiceStub{})

	rec := httptest.NewRecorder()
	h.Packages(rec, newRequest(t, http.MethodGet, "/packages", nil, nil, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.PackageResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp, 4)
	assert.Equal(t, int64(50), resp[0].Buttons)
	assert.Equal(t, "$5.00", resp[0].Price.Formatted)
	assert.Equal(t, "0.07", resp[3].UnitPrice.String())
}

func TestPlatformHandler_Purchase(t *testing.T) {
	stub := &platformServiceStub{}
	h := NewPlatformHandler(stub)

	rec := httptest.NewRecorder()
	h.Purchase(rec, newRequest(t, http.MethodPost, "/packages/purchase",
		dto.PurchasePackageRequest{Buttons: 250, PaymentReference: "pay_123"}, nil, member("alice")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", stub.account)
	assert.Equal(t, "pay_123", stub.reference)

	rec = httptest.NewRecorder()
	h.Purchase(rec, newRequest(t, http.MethodPost, "/packages/purchase",
		dto.PurchasePackageRequest{Buttons: 75, PaymentReference: "pay_124"}, nil, member("alice")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
