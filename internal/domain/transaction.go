package domain

import "time"

// TransactionKind classifies a ledger movement.
type TransactionKind string

const (
	KindPlatformPurchase TransactionKind = "platform-purchase"
	KindUserPurchase     TransactionKind = "user-purchase"
	KindEarnedFromSale   TransactionKind = "earned-from-sale"
	KindSpentOnBid       TransactionKind = "spent-on-bid"
	KindRefund           TransactionKind = "refund"
	KindInitialGrant     TransactionKind = "initial-grant"
	// KindDeposit credits a USD wallet from an external payment.
	KindDeposit TransactionKind = "deposit"
)

var validKinds = map[TransactionKind]bool{
	KindPlatformPurchase: true,
	KindUserPurchase:     true,
	KindEarnedFromSale:   true,
	KindSpentOnBid:       true,
	KindRefund:           true,
	KindInitialGrant:     true,
	KindDeposit:          true,
}

// IsValid checks if the kind is known.
func (k TransactionKind) IsValid() bool {
	return validKinds[k]
}

// IsGrantKind reports whether Grant may record this kind. Refunds go through
// Refund and opening grants through OpenAccount.
func (k TransactionKind) IsGrantKind() bool {
	switch k {
	case KindPlatformPurchase, KindUserPurchase, KindEarnedFromSale, KindDeposit:
		return true
	}
	return false
}

// IsDeductKind reports whether Deduct may record this kind.
func (k TransactionKind) IsDeductKind() bool {
	return k == KindSpentOnBid || k == KindUserPurchase
}

// Transaction is an immutable ledger log row. Amount is signed: positive for
// credits, negative for debits.
type Transaction struct {
	ID           string
	AccountID    string
	Currency     Currency
	Amount       int64
	Kind         TransactionKind
	RelatedID    *string
	Description  string
	BalanceAfter int64
	Sequence     int64
	CreatedAt    time.Time
}

// IsCredit reports whether the transaction increased the balance.
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}
