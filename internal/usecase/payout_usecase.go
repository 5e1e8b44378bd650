package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
)

// PayoutUseCase drains the refund queue. Applying a payout is idempotent, so
// the queue may deliver the same payout more than once.
type PayoutUseCase struct {
	txManager  TransactionManager
	payoutRepo PayoutRepository
	outboxRepo OutboxRepository
	ledger     *LedgerUseCase
	idGen      IDGenerator
	clock      Clock
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewPayoutUseCase creates a new PayoutUseCase.
func NewPayoutUseCase(
	txManager TransactionManager,
	payoutRepo PayoutRepository,
	outboxRepo OutboxRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *PayoutUseCase {
	return &PayoutUseCase{
		txManager:  txManager,
		payoutRepo: payoutRepo,
		outboxRepo: outboxRepo,
		ledger:     ledger,
		idGen:      idGen,
		clock:      clock,
		retrier:    retrier,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessPayout refunds a queued payout and marks it completed. A completed
// payout is left untouched. Failures are recorded on the payout row.
func (uc *PayoutUseCase) ProcessPayout(ctx context.Context, payoutID string) error {
	err := withTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		payout, err := uc.payoutRepo.GetByIDForUpdate(ctx, tx, payoutID)
		if err != nil {
			return err
		}

		if payout.IsCompleted() {
			return nil
		}

		if _, err := uc.ledger.RefundTx(ctx, tx, LedgerInput{
			AccountID:   payout.AccountID,
			Currency:    payout.Currency,
			Amount:      payout.Amount,
			RelatedID:   &payout.ListingID,
			Description: fmt.Sprintf("Refund: outbid on listing %s", payout.ListingID),
		}); err != nil {
			return err
		}

		now := uc.clock.Now()
		payout.Attempts++
		if err := uc.payoutRepo.MarkCompleted(ctx, tx, payout.ID, payout.Attempts, now); err != nil {
			return err
		}
		payout.Status = domain.PayoutStatusCompleted
		payout.CompletedAt = &now

		return uc.outboxRepo.Create(ctx, tx, domain.NewPayoutEvent(uc.idGen.Generate(), payout, now))
	})
	if err != nil {
		uc.recordFailure(ctx, payoutID, err)
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PayoutsCompleted.Inc()
	}

	return nil
}

func (uc *PayoutUseCase) recordFailure(ctx context.Context, payoutID string, cause error) {
	if uc.metrics != nil {
		uc.metrics.PayoutsFailed.Inc()
	}

	if errors.Is(cause, domain.ErrPayoutNotFound) {
		return
	}

	if err := uc.payoutRepo.RecordFailure(ctx, payoutID, cause.Error(), uc.clock.Now()); err != nil {
		uc.logger.Error().Err(err).Str("payout_id", payoutID).Msg("failed to record payout failure")
	}
}

// ListPending returns ids of pending payouts, oldest first.
func (uc *PayoutUseCase) ListPending(ctx context.Context, limit int) ([]string, error) {
	limit, _ = domain.ValidatePagination(limit, 0)

	ids, err := uc.payoutRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, storeError(err)
	}

	if uc.metrics != nil {
		uc.metrics.PayoutsPending.Set(float64(len(ids)))
	}

	return ids, nil
}

// ProcessPending applies up to limit pending payouts one after another and
// returns how many succeeded. Failed payouts stay pending.
func (uc *PayoutUseCase) ProcessPending(ctx context.Context, limit int) (int, error) {
	ids, err := uc.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		if err := uc.ProcessPayout(ctx, id); err != nil {
			uc.logger.Warn().Err(err).Str("payout_id", id).Msg("payout failed")
			errs = append(errs, fmt.Errorf("payout %s: %w", id, err))
			continue
		}
		processed++
	}

	return processed, errors.Join(errs...)
}

// GetPayout returns one payout.
func (uc *PayoutUseCase) GetPayout(ctx context.Context, id string) (*domain.Payout, error) {
	payout, err := uc.payoutRepo.GetByID(ctx, id)
	return payout, storeError(err)
}
