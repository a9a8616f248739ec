package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_IsIdempotent(t *testing.T) {
	db, drv := newTestDB(t)
	ctx := context.Background()

	first, err := db.Connect(ctx)
	require.NoError(t, err)
	second, err := db.Connect(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), drv.opens.Load())
	assert.True(t, db.Connected())
}

func TestConnect_DriverFailure(t *testing.T) {
	db := New(newFailingDriver(t))

	_, err := db.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, errOpen)
	assert.False(t, db.Connected())
}

func TestDisconnect_WhenNotConnected(t *testing.T) {
	db := New(newFailingDriver(t))

	db.Disconnect()
	db.Disconnect()
	assert.NoError(t, db.Close())
	assert.False(t, db.Connected())
}

func TestDisconnect_ThenReconnect(t *testing.T) {
	db, drv := newTestDB(t)
	ctx := context.Background()
	seedRows(t, db, [2]int{1, 2})

	db.Disconnect()
	assert.False(t, db.Connected())

	// Data lives in the file, so a fresh connection sees it.
	assert.Equal(t, int64(1), countRows(t, db))
	assert.Equal(t, int32(2), drv.opens.Load())

	_, err := db.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), drv.opens.Load())
}

func TestDisconnect_DropsActiveTransaction(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.StartTransaction(ctx, nil)
	require.NoError(t, err)
	seedRows(t, db, [2]int{1, 2})

	require.NoError(t, db.Close())
	assert.False(t, db.TransactionActive())

	// The uncommitted insert was rolled back.
	assert.Equal(t, int64(0), countRows(t, db))
}

func TestConnectionLoss_Disconnects(t *testing.T) {
	db, _ := newTestDB(t)

	conn, err := db.Connect(context.Background())
	require.NoError(t, err)

	db.checkConn(conn, sql.ErrConnDone)
	assert.False(t, db.Connected())
}

func TestConnectionLoss_IgnoresStaleConnection(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	old, err := db.Connect(ctx)
	require.NoError(t, err)
	db.Disconnect()

	_, err = db.Connect(ctx)
	require.NoError(t, err)

	// A late report about the old connection leaves the new one alone.
	db.checkConn(old, sql.ErrConnDone)
	assert.True(t, db.Connected())
}

func TestConnectionLoss_IgnoresQueryErrors(t *testing.T) {
	db, _ := newTestDB(t)

	err := db.RunQuery(context.Background(), "SELECT * FROM missing_table", nil)
	assert.ErrorIs(t, err, ErrQuery)
	assert.True(t, db.Connected())
}

func TestHealthWatcher_KeepsHealthyConnection(t *testing.T) {
	db, _ := newTestDB(t, WithHealthInterval(10*time.Millisecond))

	_, err := db.Connect(context.Background())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, db.Connected())
}

func TestHealthWatcher_DisconnectsOnFailedPing(t *testing.T) {
	db, _ := newTestDB(t, WithHealthInterval(10*time.Millisecond))

	conn, err := db.Connect(context.Background())
	require.NoError(t, err)

	// Releasing the pinned connection behind the Database's back makes the
	// next ping fail with sql.ErrConnDone.
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return !db.Connected() }, time.Second, 10*time.Millisecond)
}
