package database

import "errors"

// Errors returned by Database. I/O failures wrap both the sentinel and the
// driver error, so errors.Is matches either:
//
//	if errors.Is(err, database.ErrQuery) {
//	    // statement failed at the driver
//	}
var (
	// ErrConnection indicates the driver failed to open or keep a connection.
	ErrConnection = errors.New("database connection error")

	// ErrTransaction indicates begin, commit or rollback failed at the driver.
	ErrTransaction = errors.New("transaction error")

	// ErrState indicates the operation is invalid in the current state,
	// e.g. commit with no active transaction.
	ErrState = errors.New("invalid state")

	// ErrArgument indicates missing or invalid caller arguments. It is
	// returned before any I/O is attempted.
	ErrArgument = errors.New("invalid argument")

	// ErrQuery indicates the driver reported an error while executing a
	// statement or streaming its rows.
	ErrQuery = errors.New("query error")
)
