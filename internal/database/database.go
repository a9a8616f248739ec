package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sqlgate/internal/driver"

	"golang.org/x/sync/semaphore"
)

// Database owns at most one live connection and at most one open
// transaction on it. All queries issued through a Database run on that
// connection, inside the transaction when one is active.
type Database struct {
	drv           driver.Driver
	identityQuery string
	health        time.Duration
	log           *slog.Logger

	// mu guards the slots below. It is never held while waiting on stmt.
	mu        sync.Mutex
	db        *sql.DB
	conn      *sql.Conn
	tx        *sql.Tx
	stopWatch context.CancelFunc
	closing   sync.WaitGroup

	// stmt serializes statements on the pinned connection.
	stmt *semaphore.Weighted
}

// Option configures a Database.
type Option func(*Database)

// WithHealthInterval pings the idle connection every d and disconnects when
// the ping fails. Zero disables the watcher.
func WithHealthInterval(d time.Duration) Option {
	return func(db *Database) {
		db.health = d
	}
}

// WithIdentityQuery overrides the driver's identity query used by Insert.
// An empty query disables the lookup.
func WithIdentityQuery(q string) Option {
	return func(db *Database) {
		db.identityQuery = q
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		db.log = l
	}
}

// New creates a Database for drv. No connection is made until the first
// operation needs one.
func New(drv driver.Driver, opts ...Option) *Database {
	d := &Database{
		drv:           drv,
		identityQuery: drv.IdentityQuery(),
		log:           slog.Default(),
		stmt:          semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("driver", drv.Name())
	return d
}

// querier is satisfied by both *sql.Conn and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	_ querier = (*sql.Conn)(nil)
	_ querier = (*sql.Tx)(nil)
)

// querier returns the active transaction, or the connection when there is
// none, connecting first if needed. The pinned connection is returned too.
func (d *Database) querier(ctx context.Context) (querier, *sql.Conn, error) {
	conn, err := d.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx != nil {
		return d.tx, conn, nil
	}
	return conn, conn, nil
}

// withQuerier runs fn holding the statement slot.
func (d *Database) withQuerier(ctx context.Context, fn func(q querier) error) error {
	if err := d.acquire(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer d.release()

	q, conn, err := d.querier(ctx)
	if err != nil {
		return err
	}
	err = fn(q)
	d.checkConn(conn, err)
	return err
}

// acquire takes the statement slot. It fails only when ctx is done.
func (d *Database) acquire(ctx context.Context) error {
	return d.stmt.Acquire(ctx, 1)
}

func (d *Database) release() {
	d.stmt.Release(1)
}
