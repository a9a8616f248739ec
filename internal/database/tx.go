package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// StartTransaction begins the transaction every later query runs in, until
// Commit or Rollback. It connects first if needed. Only one transaction may
// be active; a second call fails with ErrState.
//
// As with database/sql, the transaction is rolled back if ctx is done before
// it is committed. StartTransaction waits for a running statement, so from a
// streaming RowFunc it only returns once ctx is done.
func (d *Database) StartTransaction(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if err := d.acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransaction, err)
	}
	defer d.release()

	conn, err := d.Connect(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	active := d.tx != nil
	d.mu.Unlock()
	if active {
		return nil, fmt.Errorf("%w: a transaction is already active", ErrState)
	}

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		d.checkConn(conn, err)
		return nil, fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}

	d.mu.Lock()
	d.tx = tx
	d.mu.Unlock()
	return tx, nil
}

// TransactionActive reports whether a transaction is active.
func (d *Database) TransactionActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tx != nil
}

// Commit commits the active transaction. Without one it fails with ErrState
// and touches nothing. The transaction is discarded even when the driver
// fails to commit it.
//
// Commit does not wait for the statement slot, so it may be called from a
// RowFunc. A statement of the transaction that is still streaming has its
// rows closed first, and that stream then fails with ErrQuery.
func (d *Database) Commit(ctx context.Context) error {
	return d.finish(ctx, "commit", (*sql.Tx).Commit)
}

// Rollback rolls back the active transaction. Without one it fails with
// ErrState and touches nothing. The transaction is discarded even when the
// driver fails to roll it back. Like Commit, it never waits for a running
// statement.
func (d *Database) Rollback(ctx context.Context) error {
	return d.finish(ctx, "rollback", (*sql.Tx).Rollback)
}

// finish ends the transaction without taking the statement slot:
// database/sql cancels the transaction's open statements before it commits
// or rolls back, so ending it cannot block behind one of them.
func (d *Database) finish(ctx context.Context, op string, end func(*sql.Tx) error) error {
	d.mu.Lock()
	tx, conn := d.tx, d.conn
	d.tx = nil
	d.mu.Unlock()

	if tx == nil {
		return fmt.Errorf("%w: no transaction to %s", ErrState, op)
	}

	if err := ctx.Err(); err != nil {
		// The slot is already cleared, so the transaction cannot be left open.
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s: %w", ErrTransaction, op, err)
	}

	if err := end(tx); err != nil {
		d.checkConn(conn, err)
		return fmt.Errorf("%w: %s: %w", ErrTransaction, op, err)
	}
	return nil
}

// RunInTransaction runs work inside a new transaction. The transaction is
// committed when work returns nil and rolled back otherwise, in which case
// work's error is returned (joined with the rollback error, if any).
func (d *Database) RunInTransaction(ctx context.Context, work func(ctx context.Context) error) error {
	if work == nil {
		return fmt.Errorf("%w: transaction work is nil", ErrArgument)
	}
	_, err := InTransaction(ctx, d, nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, work(ctx)
	})
	return err
}

// InTransaction is RunInTransaction for work that produces a value. The
// value is returned once the commit succeeds. A panic in work rolls the
// transaction back before it propagates.
func InTransaction[T any](ctx context.Context, d *Database, opts *sql.TxOptions, work func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if work == nil {
		return zero, fmt.Errorf("%w: transaction work is nil", ErrArgument)
	}

	if _, err := d.StartTransaction(ctx, opts); err != nil {
		return zero, err
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		if p := recover(); p != nil {
			if err := d.rollbackQuietly(ctx); err != nil {
				d.log.Error("Rollback after panic failed", "error", err)
			}
			panic(p)
		}
	}()

	v, err := work(ctx)
	if err != nil {
		settled = true
		if rbErr := d.rollbackQuietly(ctx); rbErr != nil {
			return zero, errors.Join(err, rbErr)
		}
		return zero, err
	}

	settled = true
	if err := d.Commit(ctx); err != nil {
		return zero, err
	}
	return v, nil
}

// rollbackQuietly rolls back, treating a transaction database/sql already
// ended (e.g. because ctx was cancelled) as rolled back.
func (d *Database) rollbackQuietly(ctx context.Context) error {
	err := d.Rollback(ctx)
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// finish rolled back on its own before returning.
		return nil
	}
	return err
}
