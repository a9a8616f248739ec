package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"sqlgate/internal/driver"

	"github.com/stretchr/testify/require"
)

// countingDriver counts the handles it opens.
type countingDriver struct {
	driver.Driver
	opens atomic.Int32
}

func (c *countingDriver) Open() (*sql.DB, error) {
	c.opens.Add(1)
	return c.Driver.Open()
}

// failingDriver never opens.
type failingDriver struct {
	driver.Driver
	err error
}

func newFailingDriver(t *testing.T) failingDriver {
	return failingDriver{
		Driver: driver.NewSQLiteDriver(filepath.Join(t.TempDir(), "never.db")),
		err:    errOpen,
	}
}

func (f failingDriver) Open() (*sql.DB, error) {
	return nil, f.err
}

var errOpen = errors.New("open refused")

func newTestDB(t *testing.T, opts ...Option) (*Database, *countingDriver) {
	t.Helper()

	drv := &countingDriver{Driver: driver.NewSQLiteDriver(filepath.Join(t.TempDir(), "test.db"))}
	db := New(drv, opts...)
	t.Cleanup(func() { _ = db.Close() })

	_, err := db.Exec(context.Background(), `CREATE TABLE t (id INTEGER PRIMARY KEY AUTOINCREMENT, a INTEGER, b INTEGER)`)
	require.NoError(t, err)
	return db, drv
}

func seedRows(t *testing.T, db *Database, rows ...[2]int) {
	t.Helper()
	for _, r := range rows {
		_, err := db.Exec(context.Background(), "INSERT INTO t (a, b) VALUES ("+strconv.Itoa(r[0])+", "+strconv.Itoa(r[1])+")")
		require.NoError(t, err)
	}
}

func countRows(t *testing.T, db *Database) int64 {
	t.Helper()
	n, err := Iterate(context.Background(), db, "SELECT COUNT(*) AS n FROM t", func(row Row) (int64, error) {
		return row["n"].(int64), nil
	})
	require.NoError(t, err)
	return n
}
