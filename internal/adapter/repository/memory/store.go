// Package memory is the demo store: every repository keeps its rows in
// process memory and nothing survives a restart. Transactions are fully
// serialized, which gives the same per-listing and per-account guarantees as
// the Postgres store with none of its durability.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

// ErrTxClosed is returned when committing a finished transaction.
var ErrTxClosed = errors.New("memory: transaction already closed")

type accountKey struct {
	id       string
	currency domain.Currency
}

type payoutKey struct {
	listingID string
	bidID     string
}

// Store holds all demo data. An open transaction owns the store until it
// commits or rolls back; reads outside a transaction wait for it.
type Store struct {
	sem chan struct{}

	accounts     map[accountKey]*domain.Account
	transactions []*domain.Transaction
	listings     map[string]*domain.Listing
	listingOrder []string
	bids         []*domain.Bid
	payouts      map[string]*domain.Payout
	payoutOrder  []string
	payoutKeys   map[payoutKey]string
	outbox       []*domain.OutboxEvent

	faultsMu sync.Mutex
	faults   map[string]error
}

// NewStore creates an empty demo store.
func NewStore() *Store {
	return &Store{
		sem:        make(chan struct{}, 1),
		accounts:   make(map[accountKey]*domain.Account),
		listings:   make(map[string]*domain.Listing),
		payouts:    make(map[string]*domain.Payout),
		payoutKeys: make(map[payoutKey]string),
		faults:     make(map[string]error),
	}
}

// Label identifies the store in logs and health output.
func (s *Store) Label() string {
	return "memory (demo)"
}

// FailNext makes the next call of the named repository operation return err,
// e.g. FailNext("payouts.GetByIDForUpdate", err). It lets demos and tests
// exercise store failures.
func (s *Store) FailNext(op string, err error) {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	err, ok := s.faults[op]
	if ok {
		delete(s.faults, op)
	}
	return err
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

// read runs fn with the store locked.
func (s *Store) read(ctx context.Context, fn func() error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return fn()
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for exclusive use of the store.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.fault("tx.Begin"); err != nil {
		return nil, err
	}

	if err := m.store.acquire(ctx); err != nil {
		return nil, err
	}

	return &Tx{store: m.store}, nil
}

// Tx is an open demo transaction. Writes apply immediately and are undone
// on rollback.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

// Commit keeps the writes and releases the store.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}

	if err := t.store.fault("tx.Commit"); err != nil {
		t.rollback()
		return err
	}

	t.done = true
	t.undo = nil
	t.store.release()
	return nil
}

// Rollback undoes the writes and releases the store. Rolling back a
// finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.rollback()
	return nil
}

func (t *Tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.done = true
	t.store.release()
}

func (t *Tx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func asTx(tx usecase.Transaction) *Tx {
	return tx.(*Tx)
}
