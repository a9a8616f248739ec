package driver

import (
	"database/sql"

	_ "github.com/lib/pq"
)

type PostgresDriver struct {
	dsn string
}

func NewPostgresDriver(dsn string) *PostgresDriver {
	return &PostgresDriver{dsn: dsn}
}

func (d *PostgresDriver) Name() string {
	return "postgres"
}

func (d *PostgresDriver) Open() (*sql.DB, error) {
	return sql.Open("postgres", d.dsn)
}

// IdentityQuery is empty: lastval() fails in sessions that never touched a
// sequence. Postgres inserts report their identity with
// "RETURNING id AS newid" instead.
func (d *PostgresDriver) IdentityQuery() string {
	return ""
}
