package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

func TestTxManager_CreditCommits(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO accounts .+ updated_at = GREATEST\(accounts.updated_at, EXCLUDED.updated_at\)`).
		WithArgs("seller", "BTN", int64(35), true, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow("seller", "BTN", int64(35), int64(0), int64(35), int64(0), int64(1), testPgTime, testPgTime))
	mock.ExpectCommit()

	tx, err := NewTxManager(mock).Begin(ctx)
	require.NoError(t, err)

	account, err := NewAccountRepository(mock).Credit(ctx, tx, usecase.BalanceChange{
		AccountID: "seller", Currency: domain.CurrencyButtons, Amount: 35, CountEarned: true, At: testTime,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(35), account.Balance)

	require.NoError(t, tx.Commit(ctx))
	assertExpectations(t, mock)
}

func TestTxManager_FailedDebitRollsBack(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE accounts .+ updated_at = GREATEST\(updated_at, \$5\)`).
		WithArgs("alice", "BTN", int64(500), false, pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	tx, err := NewTxManager(mock).Begin(ctx)
	require.NoError(t, err)

	_, err = NewAccountRepository(mock).Debit(ctx, tx, usecase.BalanceChange{
		AccountID: "alice", Currency: domain.CurrencyButtons, Amount: 500, At: testTime,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	require.NoError(t, tx.Rollback(ctx))
	assertExpectations(t, mock)
}

func TestTxManager_BeginFailure(t *testing.T) {
	mock := newMockPool(t)
	refused := errors.New("connection refused")
	mock.ExpectBegin().WillReturnError(refused)

	tx, err := NewTxManager(mock).Begin(context.Background())
	require.ErrorIs(t, err, refused)
	assert.Nil(t, tx)
	assert.False(t, isRetryableError(err))
}

func TestTxManager_SerializationFailureOnCommitIsRetryable(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgErrSerializationFailure})

	tx, err := NewTxManager(mock).Begin(ctx)
	require.NoError(t, err)

	err = tx.Commit(ctx)
	require.Error(t, err)
	assert.True(t, isRetryableError(err))
	assertExpectations(t, mock)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	require.NoError(t, pool.ExpectationsWereMet())
}
