package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/buttonmarket/internal/domain"
)

// withTx runs fn in one store transaction under DefaultTransactionTimeout.
// The whole unit is re-run when retrier classifies the failure as retryable;
// a nil retrier runs it once.
func withTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	run := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return storeError(err)
		}
		defer tx.Rollback(txCtx)

		if err := fn(txCtx, tx); err != nil {
			return storeError(err)
		}

		if err := tx.Commit(txCtx); err != nil {
			return storeError(err)
		}

		return nil
	}

	if retrier == nil {
		return run()
	}

	return retrier.Retry(ctx, run)
}

// storeError wraps failures that are not domain errors as
// domain.ErrTransientStore, keeping the cause in the chain.
func storeError(err error) error {
	if err == nil || isDomainError(err) || errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
}

func isDomainError(err error) bool {
	return domain.IsValidationError(err) ||
		domain.IsNotFoundError(err) ||
		errors.Is(err, domain.ErrTransientStore)
}
