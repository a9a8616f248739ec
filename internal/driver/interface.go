package driver

import (
	"database/sql"
	"fmt"
)

// Driver opens database handles for one SQL backend.
type Driver interface {
	// Name returns the driver name (e.g., "mysql", "postgres").
	Name() string

	// Open returns a handle for the configured DSN. No connection is made yet.
	Open() (*sql.DB, error)

	// IdentityQuery returns a statement yielding the identity generated by the
	// last insert on the same session, as a column named "newid".
	// An empty string means the backend has no session-scoped lookup.
	IdentityQuery() string
}

// Lookup returns the driver registered under name, configured with dsn.
func Lookup(name, dsn string) (Driver, error) {
	switch name {
	case "mysql":
		return NewMySQLDriver(dsn), nil
	case "postgres", "postgresql":
		return NewPostgresDriver(dsn), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDriver(dsn), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", name)
	}
}
