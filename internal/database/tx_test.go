package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCommitRollback_WithoutTransaction(t *testing.T) {
	drv := &countingDriver{Driver: newFailingDriver(t).Driver}
	db := New(drv)
	ctx := context.Background()

	err := db.Commit(ctx)
	assert.ErrorIs(t, err, ErrState)

	err = db.Rollback(ctx)
	assert.ErrorIs(t, err, ErrState)

	assert.Equal(t, int32(0), drv.opens.Load(), "no driver I/O expected")
}

func TestStartTransaction_RejectsSecond(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.StartTransaction(ctx, nil)
	require.NoError(t, err)
	assert.True(t, db.TransactionActive())

	_, err = db.StartTransaction(ctx, nil)
	assert.ErrorIs(t, err, ErrState)
	assert.True(t, db.TransactionActive())

	require.NoError(t, db.Rollback(ctx))
	assert.False(t, db.TransactionActive())
}

func TestStartTransaction_ConnectFailure(t *testing.T) {
	db := New(newFailingDriver(t))

	_, err := db.StartTransaction(context.Background(), nil)
	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, db.TransactionActive())
}

func TestCommit_PersistsWork(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.StartTransaction(ctx, nil)
	require.NoError(t, err)
	seedRows(t, db, [2]int{1, 2}, [2]int{3, 4})
	require.NoError(t, db.Commit(ctx))

	assert.False(t, db.TransactionActive())
	assert.Equal(t, int64(2), countRows(t, db))

	// The transaction is gone, so a second commit is a state error.
	assert.ErrorIs(t, db.Commit(ctx), ErrState)
}

func TestRollback_DiscardsWork(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.StartTransaction(ctx, nil)
	require.NoError(t, err)
	seedRows(t, db, [2]int{1, 2})
	require.NoError(t, db.Rollback(ctx))

	assert.Equal(t, int64(0), countRows(t, db))
}

func TestCommit_DriverFailureDiscardsTransaction(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	tx, err := db.StartTransaction(ctx, nil)
	require.NoError(t, err)

	// Ending the transaction behind the controller's back makes the
	// driver-level commit fail.
	require.NoError(t, tx.Rollback())

	err = db.Commit(ctx)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.False(t, db.TransactionActive())
}

func TestRunInTransaction_CommitsOnSuccess(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	err := db.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := db.Exec(ctx, "INSERT INTO t (a, b) VALUES (1, 2)")
		return err
	})
	require.NoError(t, err)

	assert.False(t, db.TransactionActive())
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestRunInTransaction_RollsBackAndReturnsWorkError(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	err := db.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := db.Exec(ctx, "INSERT INTO t (a, b) VALUES (1, 2)"); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	assert.False(t, db.TransactionActive())
	assert.Equal(t, int64(0), countRows(t, db))
}

func TestRunInTransaction_NilWork(t *testing.T) {
	drv := &countingDriver{Driver: newFailingDriver(t).Driver}
	db := New(drv)

	err := db.RunInTransaction(context.Background(), nil)
	assert.ErrorIs(t, err, ErrArgument)

	_, err = InTransaction[int](context.Background(), db, nil, nil)
	assert.ErrorIs(t, err, ErrArgument)

	assert.Equal(t, int32(0), drv.opens.Load())
}

func TestRunInTransaction_RejectsNesting(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	var inner error
	err := db.RunInTransaction(ctx, func(ctx context.Context) error {
		inner = db.RunInTransaction(ctx, func(context.Context) error { return nil })
		return inner
	})
	assert.ErrorIs(t, inner, ErrState)
	assert.ErrorIs(t, err, ErrState)
	assert.False(t, db.TransactionActive())
}

func TestInTransaction_ReturnsWorkValue(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	row, err := InTransaction(ctx, db, nil, func(ctx context.Context) (Row, error) {
		return db.Insert(ctx, insertArgs(5, 6), nil)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["newid"])
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestInTransaction_RollsBackOnPanic(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = InTransaction(ctx, db, nil, func(ctx context.Context) (int, error) {
			seedRows(t, db, [2]int{1, 2})
			panic("kaboom")
		})
	})

	assert.False(t, db.TransactionActive())
	assert.Equal(t, int64(0), countRows(t, db))
}
