package memory

import (
	"context"
	"time"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create appends an event within a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := r.store.fault("outbox.Create"); err != nil {
		return err
	}

	stored := *event
	n := len(r.store.outbox)
	r.store.outbox = append(r.store.outbox, &stored)
	asTx(tx).onRollback(func() { r.store.outbox = r.store.outbox[:n] })
	return nil
}

// GetUnpublished retrieves unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	err := r.store.read(ctx, func() error {
		for _, e := range r.store.outbox {
			if e.Published {
				continue
			}
			cp := *e
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.store.read(ctx, func() error {
		for _, e := range r.store.outbox {
			if e.ID == id {
				e.Published = true
				e.PublishedAt = &publishedAt
				return nil
			}
		}
		return nil
	})
}

// GetByAggregate retrieves events for a specific aggregate.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	err := r.store.read(ctx, func() error {
		var matched []*domain.OutboxEvent
		for _, e := range r.store.outbox {
			if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
				matched = append(matched, e)
			}
		}
		for _, e := range page(matched, limit, offset) {
			cp := *e
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.store.read(ctx, func() error {
		kept := r.store.outbox[:0]
		for _, e := range r.store.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		r.store.outbox = kept
		return nil
	})
}
