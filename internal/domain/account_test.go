package domain

import (
	"errors"
	"testing"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		debitAmount int64
		expectErr   error
	}{
		{name: "debit more than balance", balance: 100, debitAmount: 150, expectErr: ErrInsufficientFunds},
		{name: "debit exact balance", balance: 100, debitAmount: 100},
		{name: "debit less than balance", balance: 100, debitAmount: 50},
		{name: "zero amount", balance: 100, debitAmount: 0, expectErr: ErrInvalidAmount},
		{name: "negative amount", balance: 100, debitAmount: -5, expectErr: ErrInvalidAmount},
		{name: "empty account", balance: 0, debitAmount: 1, expectErr: ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.expectErr != nil && !errors.Is(err, tt.expectErr) {
				t.Errorf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestAccount_ApplyDebitCredit(t *testing.T) {
	acc := &Account{Balance: 100}

	if got := acc.ApplyDebit(30); got != 70 {
		t.Errorf("expected 70, got %d", got)
	}

	if got := acc.ApplyCredit(30); got != 130 {
		t.Errorf("expected 130, got %d", got)
	}
}

func TestTransactionKind(t *testing.T) {
	if !KindRefund.IsValid() || TransactionKind("bogus").IsValid() {
		t.Fatal("kind validity mismatch")
	}

	if KindInitialGrant.IsGrantKind() {
		t.Error("initial grant must not be accepted by Grant")
	}

	if KindRefund.IsGrantKind() {
		t.Error("refund must go through Refund")
	}

	if !KindEarnedFromSale.IsGrantKind() || !KindDeposit.IsGrantKind() {
		t.Error("expected earned-from-sale and deposit to be grant kinds")
	}

	if !KindSpentOnBid.IsDeductKind() || KindRefund.IsDeductKind() {
		t.Error("deduct kind mismatch")
	}
}
