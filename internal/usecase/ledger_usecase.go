package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// LedgerUseCase implements the grant, deduct and refund primitives. Every
// balance change is written together with its transaction row and outbox
// event or not at all.
type LedgerUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	clock           Clock
	retrier         Retrier
	metrics         *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		clock:           clock,
		retrier:         retrier,
		metrics:         metrics,
	}
}

// LedgerInput represents one currency movement.
type LedgerInput struct {
	RelatedID   *string
	AccountID   string
	Currency    domain.Currency
	Kind        domain.TransactionKind
	Description string
	Amount      int64
	// Escrow marks a debit held for later return. It is not counted as spent.
	Escrow bool
}

// LedgerResult is the account state after a movement and the log row explaining it.
type LedgerResult struct {
	Account     *domain.Account
	Transaction *domain.Transaction
}

// OpenAccount creates the button account with its onboarding grant.
func (uc *LedgerUseCase) OpenAccount(ctx context.Context, accountID string, initialGrant int64) (*LedgerResult, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	if initialGrant < 0 {
		return nil, domain.ErrInvalidAmount
	}

	var result *LedgerResult
	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		now := uc.clock.Now()
		account := &domain.Account{
			ID:           accountID,
			Currency:     domain.CurrencyButtons,
			Balance:      initialGrant,
			InitialGrant: initialGrant,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		result = &LedgerResult{Account: account}
		if initialGrant == 0 {
			return nil
		}

		txn, err := uc.record(ctx, tx, account, LedgerInput{
			AccountID:   accountID,
			Currency:    domain.CurrencyButtons,
			Kind:        domain.KindInitialGrant,
			Description: "Welcome bonus",
		}, initialGrant)
		result.Transaction = txn
		return err
	})
	if err != nil {
		uc.observeError("open", err)
		return nil, err
	}

	uc.observe("open", domain.KindInitialGrant, domain.CurrencyButtons)
	return result, nil
}

// Grant credits an account. earned-from-sale also raises lifetime earned.
func (uc *LedgerUseCase) Grant(ctx context.Context, input LedgerInput) (*LedgerResult, error) {
	return uc.run(ctx, "grant", input, uc.GrantTx)
}

// Deduct debits an account if its balance covers the amount.
func (uc *LedgerUseCase) Deduct(ctx context.Context, input LedgerInput) (*LedgerResult, error) {
	return uc.run(ctx, "deduct", input, uc.DeductTx)
}

// Refund credits an account back without touching lifetime counters.
func (uc *LedgerUseCase) Refund(ctx context.Context, input LedgerInput) (*LedgerResult, error) {
	input.Kind = domain.KindRefund
	return uc.run(ctx, "refund", input, uc.RefundTx)
}

// GrantTx is Grant inside an open transaction.
func (uc *LedgerUseCase) GrantTx(ctx context.Context, tx Transaction, input LedgerInput) (*LedgerResult, error) {
	if !input.Kind.IsGrantKind() {
		return nil, fmt.Errorf("%w: grant cannot record %q", domain.ErrInvalidKind, input.Kind)
	}

	return uc.credit(ctx, tx, input, input.Kind == domain.KindEarnedFromSale)
}

// RefundTx is Refund inside an open transaction.
func (uc *LedgerUseCase) RefundTx(ctx context.Context, tx Transaction, input LedgerInput) (*LedgerResult, error) {
	input.Kind = domain.KindRefund
	return uc.credit(ctx, tx, input, false)
}

// DeductTx is Deduct inside an open transaction.
func (uc *LedgerUseCase) DeductTx(ctx context.Context, tx Transaction, input LedgerInput) (*LedgerResult, error) {
	if err := validateLedgerInput(input); err != nil {
		return nil, err
	}

	if !input.Kind.IsDeductKind() {
		return nil, fmt.Errorf("%w: deduct cannot record %q", domain.ErrInvalidKind, input.Kind)
	}

	account, err := uc.accountRepo.Debit(ctx, tx, BalanceChange{
		AccountID:  input.AccountID,
		Currency:   input.Currency,
		Amount:     input.Amount,
		CountSpent: !input.Escrow,
		At:         uc.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	txn, err := uc.record(ctx, tx, account, input, -input.Amount)
	if err != nil {
		return nil, err
	}

	return &LedgerResult{Account: account, Transaction: txn}, nil
}

func (uc *LedgerUseCase) credit(ctx context.Context, tx Transaction, input LedgerInput, countEarned bool) (*LedgerResult, error) {
	if err := validateLedgerInput(input); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.Credit(ctx, tx, BalanceChange{
		AccountID:   input.AccountID,
		Currency:    input.Currency,
		Amount:      input.Amount,
		CountEarned: countEarned,
		At:          uc.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	txn, err := uc.record(ctx, tx, account, input, input.Amount)
	if err != nil {
		return nil, err
	}

	return &LedgerResult{Account: account, Transaction: txn}, nil
}

// record appends the log row and the outbox event for a balance change that
// has already been applied to account.
func (uc *LedgerUseCase) record(ctx context.Context, tx Transaction, account *domain.Account, input LedgerInput, signed int64) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		AccountID:    account.ID,
		Currency:     account.Currency,
		Amount:       signed,
		Kind:         input.Kind,
		RelatedID:    input.RelatedID,
		Description:  input.Description,
		BalanceAfter: account.Balance,
		Sequence:     account.Version,
		CreatedAt:    account.UpdatedAt,
	}

	if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.NewLedgerEvent(uc.idGen.Generate(), txn)); err != nil {
		return nil, err
	}

	return txn, nil
}

func (uc *LedgerUseCase) run(
	ctx context.Context,
	operation string,
	input LedgerInput,
	fn func(context.Context, Transaction, LedgerInput) (*LedgerResult, error),
) (*LedgerResult, error) {
	if err := validateLedgerInput(input); err != nil {
		uc.observeError(operation, err)
		return nil, err
	}

	var result *LedgerResult
	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, err = fn(ctx, tx, input)
		return err
	})
	if err != nil {
		uc.observeError(operation, err)
		return nil, err
	}

	uc.observe(operation, input.Kind, input.Currency)
	return result, nil
}

func validateLedgerInput(input LedgerInput) error {
	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return err
	}

	if !input.Currency.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, input.Currency)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	return domain.ValidateDescription(input.Description)
}

// GetAccountBalance returns the account's balance in one currency.
func (uc *LedgerUseCase) GetAccountBalance(ctx context.Context, accountID string, currency domain.Currency) (*domain.Account, error) {
	if !currency.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, currency)
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID, currency)
	return account, storeError(err)
}

// GetBalances returns every currency wallet of an account.
func (uc *LedgerUseCase) GetBalances(ctx context.Context, accountID string) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.ListByOwner(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}

	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	return accounts, nil
}

// GetTransactionLog returns an account's transactions, most recent first.
// An empty currency returns both wallets interleaved.
func (uc *LedgerUseCase) GetTransactionLog(ctx context.Context, accountID string, currency domain.Currency, limit, offset int) ([]*domain.Transaction, error) {
	if currency != "" && !currency.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, currency)
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	txns, err := uc.transactionRepo.ListByAccount(ctx, accountID, currency, limit, offset)
	return txns, storeError(err)
}

// ListRecentTransactions feeds the activity view.
func (uc *LedgerUseCase) ListRecentTransactions(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	limit, _ = domain.ValidatePagination(limit, 0)

	txns, err := uc.transactionRepo.ListRecent(ctx, limit)
	return txns, storeError(err)
}

func (uc *LedgerUseCase) observe(operation string, kind domain.TransactionKind, currency domain.Currency) {
	if uc.metrics != nil {
		uc.metrics.LedgerOperations.WithLabelValues(operation, string(kind), string(currency)).Inc()
	}
}

func (uc *LedgerUseCase) observeError(operation string, err error) {
	if uc.metrics != nil {
		uc.metrics.LedgerErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

// errorType is a low-cardinality label for err.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, domain.ErrListingNotActive):
		return "listing_not_active"
	case errors.Is(err, domain.ErrSelfBid):
		return "self_bid"
	case domain.IsNotFoundError(err):
		return "not_found"
	case errors.Is(err, domain.ErrTransientStore):
		return "transient"
	case domain.IsValidationError(err):
		return "validation"
	default:
		return "internal"
	}
}
