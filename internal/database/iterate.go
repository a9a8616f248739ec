package database

import (
	"context"
	"fmt"
)

// Iterate runs query and calls fn for every row. Each call replaces the
// running result, so the value returned is the one fn produced for the last
// row, or the zero value when there were no rows.
func Iterate[T any](ctx context.Context, d *Database, query string, fn func(Row) (T, error), opts ...QueryOption) (T, error) {
	var result T
	if fn == nil {
		return result, fmt.Errorf("%w: iterate needs a row function", ErrArgument)
	}

	err := d.RunQuery(ctx, query, func(rec Record) error {
		if rec.Done {
			return nil
		}
		v, err := fn(rec.Row)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Execute runs query and returns fn applied to every row, in arrival order.
// The slice is empty, not nil, when there are no rows.
func Execute[T any](ctx context.Context, d *Database, query string, fn func(Row) (T, error), opts ...QueryOption) ([]T, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: execute needs a row function", ErrArgument)
	}

	rows := make([]T, 0)
	collected, err := Iterate(ctx, d, query, func(row Row) ([]T, error) {
		v, err := fn(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, v)
		return rows, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if collected == nil {
		return rows, nil
	}
	return collected, nil
}

// Execute runs query and returns all its rows in arrival order.
func (d *Database) Execute(ctx context.Context, query string, opts ...QueryOption) ([]Row, error) {
	return Execute(ctx, d, query, func(row Row) (Row, error) { return row, nil }, opts...)
}
