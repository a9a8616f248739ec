package database

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// Connect returns the live connection, opening it on first use. Calls made
// while connected return the same connection without any I/O.
func (d *Database) Connect(ctx context.Context) (*sql.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return d.conn, nil
	}

	db, err := d.drv.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	// One connection per Database: the pool never grows past the pinned conn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	d.db = db
	d.conn = conn
	if d.health > 0 {
		watchCtx, cancel := context.WithCancel(context.Background())
		d.stopWatch = cancel
		go d.watch(watchCtx, conn)
	}

	d.log.Info("Connection opened")
	return conn, nil
}

// Connected reports whether a live connection is held.
func (d *Database) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// Disconnect drops the connection. The handles are cleared at once and the
// underlying close runs in the background; close errors are logged, never
// returned. An open transaction is rolled back first. Disconnecting while
// disconnected does nothing.
func (d *Database) Disconnect() {
	d.disconnect(nil)
}

// Close disconnects and waits for the underlying close to finish. It
// satisfies io.Closer and always returns nil.
func (d *Database) Close() error {
	d.Disconnect()
	d.closing.Wait()
	return nil
}

// disconnect drops the connection if it is expect, or whatever is held when
// expect is nil.
func (d *Database) disconnect(expect *sql.Conn) {
	d.mu.Lock()
	conn, db, tx, stop := d.conn, d.db, d.tx, d.stopWatch
	if conn == nil || (expect != nil && conn != expect) {
		d.mu.Unlock()
		return
	}
	d.conn, d.db, d.tx, d.stopWatch = nil, nil, nil, nil
	d.closing.Add(1)
	d.mu.Unlock()

	d.log.Info("Disconnecting")
	if stop != nil {
		stop()
	}

	go func() {
		defer d.closing.Done()
		if tx != nil {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				d.log.Warn("Rollback on disconnect failed", "error", err)
			}
		}
		if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			d.log.Warn("Connection close failed", "error", err)
		}
		if err := db.Close(); err != nil {
			d.log.Warn("Database close failed", "error", err)
		}
		d.log.Info("Connection closed")
	}()
}

// lost handles a connection the driver reported dead.
func (d *Database) lost(conn *sql.Conn, cause error) {
	d.log.Warn("Connection lost", "error", cause)
	d.disconnect(conn)
}

// checkConn disconnects when err says the connection is gone.
func (d *Database) checkConn(conn *sql.Conn, err error) {
	if err == nil || conn == nil {
		return
	}
	if errors.Is(err, sqldriver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		d.lost(conn, err)
	}
}

// watch pings the idle connection until ctx is done or a ping fails.
// Ticks that find a statement running are skipped.
func (d *Database) watch(ctx context.Context, conn *sql.Conn) {
	ticker := time.NewTicker(d.health)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !d.stmt.TryAcquire(1) {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, d.health)
		err := conn.PingContext(pingCtx)
		cancel()
		d.release()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.lost(conn, err)
			return
		}
	}
}
