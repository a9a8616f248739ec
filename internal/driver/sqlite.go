package driver

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteDriver opens databases through modernc.org/sqlite. That driver
// reports a single result set per query: a multi-statement query runs every
// statement but only the rows of the last one are returned. Send statements
// whose rows matter one at a time.
type SQLiteDriver struct {
	dsn string
}

// NewSQLiteDriver accepts either a plain file path or a "file:" URI.
// Plain paths get foreign keys and a busy timeout switched on.
func NewSQLiteDriver(dsn string) *SQLiteDriver {
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	return &SQLiteDriver{dsn: dsn}
}

func (d *SQLiteDriver) Name() string {
	return "sqlite"
}

func (d *SQLiteDriver) Open() (*sql.DB, error) {
	return sql.Open("sqlite", d.dsn)
}

func (d *SQLiteDriver) IdentityQuery() string {
	return "SELECT last_insert_rowid() AS newid"
}
