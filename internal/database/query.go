package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row maps column names to values. Text the driver returns as []byte is
// converted to string.
type Row map[string]any

// Column is the driver-reported metadata of one result column.
type Column struct {
	// Name is the key of the column in Row and Columns. It is the driver's
	// name, suffixed when an earlier column of the set has the same name.
	Name string
	// Index is the column position in the result set.
	Index int
	// DatabaseType is the type name reported by the driver, e.g. "VARCHAR".
	DatabaseType string
	// Nullable is only meaningful when the driver reports it.
	Nullable bool
}

// Columns maps column names to their metadata for one result set.
type Columns map[string]Column

// Names returns the column names in result-set order.
func (c Columns) Names() []string {
	cols := make([]Column, 0, len(c))
	for _, col := range c {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Index < cols[j].Index })

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

// Record is one event of a query stream. A query yields one record per row,
// in driver order, then a single record with Done set and a nil Row. The
// Columns of every record are those of the result set the row belongs to.
type Record struct {
	Row     Row
	Columns Columns
	Done    bool
}

// RowFunc receives the records of a query. A non-nil error stops the stream
// and is returned by RunQuery as is.
type RowFunc func(Record) error

type queryOptions struct {
	verbose  bool
	buffered bool
}

// QueryOption tunes RunQuery.
type QueryOption func(*queryOptions)

// Verbose logs every record of the query.
func Verbose() QueryOption {
	return func(o *queryOptions) {
		o.verbose = true
	}
}

// Buffered reads the whole result and releases the connection before any
// record is delivered. The RowFunc may then issue statements of its own.
func Buffered() QueryOption {
	return func(o *queryOptions) {
		o.buffered = true
	}
}

// RunQuery executes query and feeds its records to fn. Every result set the
// statement produces is streamed, each with its own column snapshot; how
// many sets a multi-statement query yields is up to the driver (see the
// driver package).
//
// Row records are delivered while the statement still holds the connection.
// From such a record fn may call Commit or Rollback, but any other call that
// needs the connection (queries, CRUD helpers, StartTransaction) waits for
// this statement and so only returns once its own ctx is done. Use Buffered
// to issue statements from fn. The final Done record is delivered after the
// connection is released, so fn may do anything from it.
//
// A failure to connect wraps ErrConnection; a failure of the statement or of
// row iteration wraps ErrQuery. No record follows an error.
func (d *Database) RunQuery(ctx context.Context, query string, fn RowFunc, opts ...QueryOption) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: empty query", ErrArgument)
	}
	if fn == nil {
		fn = func(Record) error { return nil }
	}

	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	var records []Record
	deliver := fn
	if o.buffered {
		deliver = func(rec Record) error {
			records = append(records, rec)
			return nil
		}
	}

	var last Columns
	err := d.withQuerier(ctx, func(q querier) error {
		var err error
		last, err = d.stream(ctx, q, query, o, deliver)
		return err
	})
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return fn(Record{Columns: last, Done: true})
}

// Exec runs a statement that returns no rows, such as DDL, inside the
// active transaction when there is one.
func (d *Database) Exec(ctx context.Context, query string) (sql.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrArgument)
	}

	var res sql.Result
	err := d.withQuerier(ctx, func(q querier) error {
		r, err := q.ExecContext(ctx, query)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrQuery, err)
		}
		res = r
		return nil
	})
	return res, err
}

// stream drives one statement: per result set a column snapshot followed
// by its rows. It returns the columns of the last set; the Done record is
// left to the caller. Any failure ends it.
func (d *Database) stream(ctx context.Context, q querier, query string, o queryOptions, fn RowFunc) (Columns, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	columns := Columns{}
	var count int
	for set := 0; ; set++ {
		types, err := rows.ColumnTypes()
		if err != nil {
			return nil, fmt.Errorf("%w: columns: %w", ErrQuery, err)
		}
		var keys []string
		columns, keys = newColumns(types)
		if o.verbose {
			d.log.Info("Query result set", "set", set, "columns", len(types))
		}

		values := make([]any, len(types))
		scanArgs := make([]any, len(types))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		for rows.Next() {
			if err := rows.Scan(scanArgs...); err != nil {
				return nil, fmt.Errorf("%w: row scan: %w", ErrQuery, err)
			}

			row := make(Row, len(keys))
			for i, key := range keys {
				row[key] = normalize(values[i])
			}

			if o.verbose {
				d.log.Info("Query row", "set", set, "row", count)
			}
			count++

			if err := fn(Record{Row: row, Columns: columns}); err != nil {
				return nil, err
			}
		}

		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows iteration: %w", ErrQuery, err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	if o.verbose {
		d.log.Info("Query done", "rows", count)
	}
	return columns, nil
}

// newColumns builds the column snapshot of a result set and the row key of
// each column. A name already taken in the set gets a numeric suffix
// ("id", "id_1", ...), so joins selecting the same name twice keep every
// column.
func newColumns(types []*sql.ColumnType) (Columns, []string) {
	columns := make(Columns, len(types))
	keys := make([]string, len(types))
	for i, t := range types {
		key := t.Name()
		for n := 1; ; n++ {
			if _, taken := columns[key]; !taken {
				break
			}
			key = t.Name() + "_" + strconv.Itoa(n)
		}

		nullable, _ := t.Nullable()
		columns[key] = Column{
			Name:         key,
			Index:        i,
			DatabaseType: t.DatabaseTypeName(),
			Nullable:     nullable,
		}
		keys[i] = key
	}
	return columns, keys
}

// normalize copies driver byte slices into strings.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
