package driver

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

type MySQLDriver struct {
	dsn string
}

func NewMySQLDriver(dsn string) *MySQLDriver {
	return &MySQLDriver{dsn: dsn}
}

func (d *MySQLDriver) Name() string {
	return "mysql"
}

// Open always enables multiStatements, so one query may return several
// result sets.
func (d *MySQLDriver) Open() (*sql.DB, error) {
	dsn, err := d.DSN()
	if err != nil {
		return nil, err
	}
	return sql.Open("mysql", dsn)
}

// DSN returns the configured DSN with multiStatements switched on.
func (d *MySQLDriver) DSN() (string, error) {
	cfg, err := mysql.ParseDSN(d.dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

// LAST_INSERT_ID is per connection, so it must run on the connection that
// did the insert.
func (d *MySQLDriver) IdentityQuery() string {
	return "SELECT LAST_INSERT_ID() AS newid"
}
