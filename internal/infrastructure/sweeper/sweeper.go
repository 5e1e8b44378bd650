package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
	"github.com/iho/buttonmarket/internal/usecase"
)

const lockKey = "sweep-expired-listings"

// ListingSweeper settles listings whose deadline has passed.
type ListingSweeper interface {
	SweepExpiredListings(ctx context.Context, now time.Time, limit int) ([]usecase.SettlementResult, error)
}

// Config for Sweeper.
type Config struct {
	Lifecycle ListingSweeper
	// Locker is optional. Without one every replica sweeps.
	Locker    usecase.Locker
	Clock     usecase.Clock
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Interval  time.Duration
	BatchSize int
}

// Sweeper runs the expired listing sweep on an interval.
type Sweeper struct {
	lifecycle ListingSweeper
	locker    usecase.Locker
	clock     usecase.Clock
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	interval  time.Duration
	batchSize int
}

// New creates a Sweeper.
func New(cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = usecase.DefaultSweepBatchSize
	}

	return &Sweeper{
		lifecycle: cfg.Lifecycle,
		locker:    cfg.Locker,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With().Str("component", "sweeper").Logger(),
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

// Start sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("batch_size", s.batchSize).
		Bool("locked", s.locker != nil).
		Msg("sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("sweep failed")
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs one sweep. It returns nil results when another replica
// holds the lock.
func (s *Sweeper) RunOnce(ctx context.Context) ([]usecase.SettlementResult, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, lockKey, s.interval)
		if err != nil {
			return nil, err
		}
		if !ok {
			if s.metrics != nil {
				s.metrics.SweepsSkipped.Inc()
			}
			s.logger.Debug().Msg("sweep lock held elsewhere")
			return nil, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	results, err := s.lifecycle.SweepExpiredListings(ctx, s.clock.Now(), s.batchSize)
	if err != nil {
		return results, err
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		event := s.logger.Debug().Str("listing_id", r.ListingID).Str("outcome", r.Outcome)
		if r.WinnerID != nil {
			event = event.Str("winner_id", *r.WinnerID).Int64("amount", r.Amount)
		}
		event.Msg("listing settled")
	}

	return results, nil
}
