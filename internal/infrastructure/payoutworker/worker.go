package payoutworker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// PendingLister lists queued payouts, oldest first.
type PendingLister interface {
	ListPending(ctx context.Context, limit int) ([]string, error)
}

// Config for Worker.
type Config struct {
	Queue     PendingLister
	Processor usecase.PayoutProcessor
	Logger    zerolog.Logger
	Interval  time.Duration
	BatchSize int
	Workers   int
	// MaxAttempts bounds the tries per payout within one poll.
	MaxAttempts int
	// InitialBackoff is the first delay between tries of one payout.
	InitialBackoff time.Duration
}

// Worker drains the refund queue on an interval.
type Worker struct {
	queue          PendingLister
	processor      usecase.PayoutProcessor
	logger         zerolog.Logger
	interval       time.Duration
	batchSize      int
	workers        int
	maxAttempts    int
	initialBackoff time.Duration
}

// New creates a Worker.
func New(cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = usecase.DefaultPayoutBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}

	return &Worker{
		queue:          cfg.Queue,
		processor:      cfg.Processor,
		logger:         cfg.Logger.With().Str("component", "payout_worker").Logger(),
		interval:       cfg.Interval,
		batchSize:      cfg.BatchSize,
		workers:        cfg.Workers,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

// Start polls until ctx is cancelled. In-flight payouts finish before it returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Dur("interval", w.interval).
		Int("batch_size", w.batchSize).
		Int("workers", w.workers).
		Msg("payout worker started")

	pool := pond.NewPool(w.workers, pond.WithQueueSize(w.batchSize))
	defer pool.StopAndWait()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx, pool); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("payout poll failed")
		}

		select {
		case <-ctx.Done():
			w.logger.Info().Msg("payout worker shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch of pending payouts on pool and reports how many
// were applied.
func (w *Worker) RunOnce(ctx context.Context, pool pond.Pool) (int, error) {
	ids, err := w.queue.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var applied, failed atomic.Int32
	group := pool.NewGroup()
	for _, id := range ids {
		group.Submit(func() {
			if err := w.process(ctx, id); err != nil {
				failed.Add(1)
				w.logger.Error().Err(err).Str("payout_id", id).Msg("payout not applied")
				return
			}
			applied.Add(1)
		})
	}
	_ = group.Wait()

	w.logger.Info().
		Int("pending", len(ids)).
		Int32("applied", applied.Load()).
		Int32("failed", failed.Load()).
		Msg("payout batch processed")

	return int(applied.Load()), nil
}

func (w *Worker) process(ctx context.Context, id string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialBackoff
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := w.processor.ProcessPayout(ctx, id)
		if err == nil {
			return nil
		}
		if domain.IsValidationError(err) || domain.IsNotFoundError(err) {
			return backoff.Permanent(err)
		}
		w.logger.Warn().Err(err).Str("payout_id", id).Int("attempt", attempt).Msg("payout attempt failed")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(w.maxAttempts-1)), ctx))
}
