// Package database is a single-connection access layer over database/sql.
//
// A Database lazily opens one connection and keeps it pinned; every query,
// transaction and CRUD helper runs on it. At most one transaction is open at
// a time and, while it is, all queries issued through the Database join it.
//
// # Streaming
//
// RunQuery turns a statement into a sequence of Records: one per row, in the
// order the driver produces them, followed by exactly one Record with Done
// set. Iterate folds that sequence into the value produced for the last row,
// and Execute collects every row.
//
//	rows, err := db.Execute(ctx, "SELECT id, name FROM users")
//
// # Transactions
//
// RunInTransaction brackets a unit of work with begin and commit, rolling
// back when the work fails:
//
//	err := db.RunInTransaction(ctx, func(ctx context.Context) error {
//	    _, err := db.Insert(ctx, sqlutil.Insert{Table: "users", Values: values}, nil)
//	    return err
//	})
//
// # Concurrency
//
// A Database is safe for use by multiple goroutines: statements on the
// connection are serialized. A streaming RowFunc runs while its statement
// holds the connection: for row records it may end the transaction but must
// not issue statements itself (use Buffered for that). The Done record
// arrives after the connection is released.
package database
