package domain

import "time"

// Account is the balance of one account in one currency. Rows are created on
// first use and never deleted.
type Account struct {
	ID           string
	Currency     Currency
	Balance      int64
	InitialGrant int64
	Earned       int64
	Spent        int64
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > a.Balance {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount int64) int64 {
	return a.Balance - amount
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount int64) int64 {
	return a.Balance + amount
}
