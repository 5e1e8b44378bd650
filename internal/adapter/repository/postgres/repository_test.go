package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/domain"
	"github.com/iho/buttonmarket/internal/usecase"
)

var (
	testTime    = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	testPgTime  = pgtype.Timestamptz{Time: testTime, Valid: true}
	accountCols = []string{"id", "currency", "balance", "initial_grant", "earned", "spent", "version", "created_at", "updated_at"}
)

func beginTx(t *testing.T, mock pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	mock.ExpectBegin()
	tx, err := NewTxManager(mock).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestAccountRepository_DebitWithoutCoverage(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery("UPDATE accounts").
		WithArgs("alice", "BTN", int64(30), true, pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Debit(context.Background(), tx, usecase.BalanceChange{
		AccountID:  "alice",
		Currency:   domain.CurrencyButtons,
		Amount:     30,
		CountSpent: true,
		At:         testTime,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assertExpectations(t, mock)
}

func TestAccountRepository_CreditReturnsWallet(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("seller", "BTN", int64(35), true, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow("seller", "BTN", int64(135), int64(100), int64(35), int64(0), int64(2), testPgTime, testPgTime))

	account, err := repo.Credit(context.Background(), tx, usecase.BalanceChange{
		AccountID:   "seller",
		Currency:    domain.CurrencyButtons,
		Amount:      35,
		CountEarned: true,
		At:          testTime,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(135), account.Balance)
	assert.Equal(t, int64(35), account.Earned)
	assert.Equal(t, int64(2), account.Version)
	assert.Equal(t, domain.CurrencyButtons, account.Currency)
	assertExpectations(t, mock)
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewAccountRepository(mock)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("alice", "BTN", int64(100), int64(100), int64(0), int64(0), int64(1), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := repo.Create(context.Background(), tx, &domain.Account{
		ID: "alice", Currency: domain.CurrencyButtons, Balance: 100, InitialGrant: 100, Version: 1,
		CreatedAt: testTime, UpdatedAt: testTime,
	})
	require.ErrorIs(t, err, domain.ErrAccountExists)
	assertExpectations(t, mock)
}

func TestAccountRepository_GetByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("ghost", "USD").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost", domain.CurrencyUSD)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, mock)
}

func TestTransactionRepository_SumByAccount(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)

	mock.ExpectQuery("FROM transactions").
		WithArgs("alice", "BTN").
		WillReturnRows(pgxmock.NewRows([]string{"initial_grant", "movements", "count"}).
			AddRow(int64(100), int64(-40), int64(4)))

	sums, err := repo.SumByAccount(context.Background(), "alice", domain.CurrencyButtons)
	require.NoError(t, err)
	assert.Equal(t, usecase.TransactionSums{InitialGrant: 100, Movements: -40, Count: 4}, sums)
	assertExpectations(t, mock)
}

func TestTransactionRepository_ListByAccountAnyCurrency(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)

	mock.ExpectQuery("FROM transactions").
		WithArgs("alice", pgtype.Text{}, int32(10), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "account_id", "currency", "amount", "kind", "related_id", "description", "balance_after", "sequence", "created_at"}).
			AddRow("t2", "alice", "BTN", int64(-20), "spent-on-bid", pgtype.Text{String: "l1", Valid: true}, "Bid on listing l1", int64(80), int64(2), testPgTime).
			AddRow("t1", "alice", "BTN", int64(100), "initial-grant", pgtype.Text{}, "Welcome", int64(100), int64(1), testPgTime))

	txns, err := repo.ListByAccount(context.Background(), "alice", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.KindSpentOnBid, txns[0].Kind)
	require.NotNil(t, txns[0].RelatedID)
	assert.Equal(t, "l1", *txns[0].RelatedID)
	assert.Nil(t, txns[1].RelatedID)
	assertExpectations(t, mock)
}

func TestListingRepository_UpdateMissing(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewListingRepository(mock)

	bidder := "x"
	mock.ExpectExec("UPDATE listings").
		WithArgs("l1", int64(50), pgtype.Text{String: bidder, Valid: true}, int32(1), "active", pgxmock.AnyArg(), pgtype.Timestamptz{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), tx, &domain.Listing{
		ID: "l1", HighestAmount: 50, HighestBidderID: &bidder, BidCount: 1,
		Status: domain.ListingStatusActive, UpdatedAt: testTime,
	})
	require.ErrorIs(t, err, domain.ErrListingNotFound)
	assertExpectations(t, mock)
}

func TestListingRepository_ListDue(t *testing.T) {
	mock := newMockPool(t)
	repo := NewListingRepository(mock)

	mock.ExpectQuery("FROM listings").
		WithArgs(testPgTime, int32(100)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("l1").AddRow("l2"))

	ids, err := repo.ListDue(context.Background(), testTime, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, ids)
	assertExpectations(t, mock)
}

func TestBidRepository_NoStandingBid(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewBidRepository(mock)

	mock.ExpectQuery("FROM bids").
		WithArgs("l1").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetActiveByListing(context.Background(), tx, "l1")
	require.ErrorIs(t, err, domain.ErrBidNotFound)
	assertExpectations(t, mock)
}

func TestPayoutRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewPayoutRepository(mock)

	mock.ExpectExec("INSERT INTO payouts").
		WithArgs("p1", "l1", "b1", "x", "BTN", int64(50), "pending", testPgTime).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE payouts").
		WithArgs("p1", int32(1), testPgTime).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE payouts").
		WithArgs("p1", "boom", testPgTime).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.Create(ctx, tx, &domain.Payout{
		ID: "p1", ListingID: "l1", BidID: "b1", AccountID: "x",
		Currency: domain.CurrencyButtons, Amount: 50, Status: domain.PayoutStatusPending, CreatedAt: testTime,
	}))
	require.NoError(t, repo.MarkCompleted(ctx, tx, "p1", 1, testTime))
	require.NoError(t, tx.Commit(ctx))

	err := repo.RecordFailure(ctx, "p1", "boom", testTime)
	require.ErrorIs(t, err, domain.ErrPayoutNotFound, "completed payouts are not touched")
	assertExpectations(t, mock)
}

func TestOutboxRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)
	repo := NewOutboxRepository(mock)

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs("e1", "l1", domain.AggregateTypeListing, domain.EventTypeListingSold, []byte(`{"amount":50}`), testPgTime, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "e1",
		AggregateID:   "l1",
		AggregateType: domain.AggregateTypeListing,
		EventType:     domain.EventTypeListingSold,
		Payload:       map[string]any{"amount": 50},
		CreatedAt:     testTime,
	})
	require.NoError(t, err)
	assertExpectations(t, mock)
}
