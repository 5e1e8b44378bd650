package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/infrastructure/postgres/generated"
	"github.com/iho/buttonmarket/internal/usecase"
)

// PayoutRepository implements usecase.PayoutRepository.
type PayoutRepository struct {
	queries *generated.Queries
}

// NewPayoutRepository creates a new PayoutRepository.
func NewPayoutRepository(db generated.DBTX) *PayoutRepository {
	return &PayoutRepository{queries: generated.New(db)}
}

// Create enqueues a payout. ON CONFLICT keeps one payout per listing and bid.
func (r *PayoutRepository) Create(ctx context.Context, tx usecase.Transaction, payout *domain.Payout) error {
	return txQueries(tx).CreatePayout(ctx, generated.CreatePayoutParams{
		ID:        payout.ID,
		ListingID: payout.ListingID,
		BidID:     payout.BidID,
		AccountID: payout.AccountID,
		Currency:  string(payout.Currency),
		Amount:    payout.Amount,
		Status:    string(payout.Status),
		CreatedAt: timeToPgTimestamptz(payout.CreatedAt),
	})
}

// GetByID retrieves a payout.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	row, err := r.queries.GetPayout(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPayoutNotFound
		}

		return nil, err
	}

	return rowToPayout(row), nil
}

// GetByIDForUpdate retrieves a payout with a FOR UPDATE lock.
func (r *PayoutRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payout, error) {
	row, err := txQueries(tx).GetPayoutForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPayoutNotFound
		}

		return nil, err
	}

	return rowToPayout(row), nil
}

// MarkCompleted marks a payout as applied.
func (r *PayoutRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id string, attempts int, completedAt time.Time) error {
	n, err := txQueries(tx).MarkPayoutCompleted(ctx, generated.MarkPayoutCompletedParams{
		ID:          id,
		Attempts:    int32(attempts),
		CompletedAt: timeToPgTimestamptz(completedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrPayoutNotFound
	}

	return nil
}

// RecordFailure counts a failed attempt on a pending payout.
func (r *PayoutRepository) RecordFailure(ctx context.Context, id string, lastError string, at time.Time) error {
	n, err := r.queries.RecordPayoutFailure(ctx, generated.RecordPayoutFailureParams{
		ID:        id,
		LastError: lastError,
		UpdatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrPayoutNotFound
	}

	return nil
}

// ListPending returns ids of pending payouts, oldest first.
func (r *PayoutRepository) ListPending(ctx context.Context, limit int) ([]string, error) {
	return r.queries.ListPendingPayouts(ctx, int32(limit))
}

func rowToPayout(row generated.Payout) *domain.Payout {
	return &domain.Payout{
		ID:          row.ID,
		ListingID:   row.ListingID,
		BidID:       row.BidID,
		AccountID:   row.AccountID,
		Currency:    domain.Currency(row.Currency),
		Amount:      row.Amount,
		Status:      domain.PayoutStatus(row.Status),
		Attempts:    int(row.Attempts),
		LastError:   row.LastError,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
		CompletedAt: pgTimestamptzToTimePtr(row.CompletedAt),
	}
}
