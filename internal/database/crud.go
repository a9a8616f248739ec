package database

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sqlgate/internal/sqlutil"
)

// SelectArgs describes a Select.
type SelectArgs struct {
	sqlutil.Select

	// FieldMap maps output keys to source columns. When nil, the columns of
	// the first row are used under their own names for every row.
	FieldMap map[string]string
}

// Select runs a SELECT built from args and returns the mapped rows in order.
func (d *Database) Select(ctx context.Context, args SelectArgs) ([]Row, error) {
	query, err := args.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArgument, err)
	}

	fieldMap := args.FieldMap
	return Execute(ctx, d, query, func(row Row) (Row, error) {
		if fieldMap == nil {
			fieldMap = make(map[string]string, len(row))
			for name := range row {
				fieldMap[name] = name
			}
		}

		entry := make(Row, len(fieldMap))
		for key, column := range fieldMap {
			entry[key] = row[column]
		}
		return entry, nil
	})
}

// Update runs an UPDATE built from args. Field values are SQL expressions
// and are interpolated verbatim.
func (d *Database) Update(ctx context.Context, args sqlutil.Update) ([]Row, error) {
	query, err := args.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArgument, err)
	}
	return d.Execute(ctx, query)
}

// Insert runs an INSERT built from args. See InsertStatement for the result.
func (d *Database) Insert(ctx context.Context, args sqlutil.Insert, defaults Row) (Row, error) {
	stmt, err := args.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArgument, err)
	}
	return d.InsertStatement(ctx, stmt, defaults)
}

// InsertStatement runs stmt and looks up the identity it generated. The
// result is a copy of defaults with "newid" set to the identity as int64, or
// -1 when none is available.
//
// A "newid" column returned by stmt itself (e.g. "RETURNING id AS newid")
// wins; otherwise the driver's identity query runs right after stmt on the
// same session.
func (d *Database) InsertStatement(ctx context.Context, stmt string, defaults Row) (Row, error) {
	if strings.TrimSpace(stmt) == "" {
		return nil, fmt.Errorf("%w: empty insert statement", ErrArgument)
	}

	result := make(Row, len(defaults)+1)
	for k, v := range defaults {
		result[k] = v
	}

	var newID any
	capture := func(rec Record) error {
		if v, ok := rec.Row["newid"]; ok && v != nil {
			newID = v
		}
		return nil
	}

	err := d.withQuerier(ctx, func(q querier) error {
		if _, err := d.stream(ctx, q, stmt, queryOptions{}, capture); err != nil {
			return err
		}
		if newID != nil || d.identityQuery == "" {
			return nil
		}
		_, err := d.stream(ctx, q, d.identityQuery, queryOptions{}, capture)
		return err
	})
	if err != nil {
		return nil, err
	}

	result["newid"] = identity(newID)
	return result, nil
}

// Delete runs a DELETE built from args and reports true once it completes.
func (d *Database) Delete(ctx context.Context, args sqlutil.Delete) (bool, error) {
	stmt, err := args.Build()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrArgument, err)
	}
	return d.DeleteStatement(ctx, stmt)
}

// DeleteStatement runs stmt and reports true once it completes.
func (d *Database) DeleteStatement(ctx context.Context, stmt string) (bool, error) {
	if strings.TrimSpace(stmt) == "" {
		return false, fmt.Errorf("%w: empty delete statement", ErrArgument)
	}
	if err := d.RunQuery(ctx, stmt, nil); err != nil {
		return false, err
	}
	return true, nil
}

// identity converts a driver identity value to int64. Missing, zero,
// negative, fractional, out-of-range and non-numeric values give -1.
func identity(v any) int64 {
	var id int64
	switch n := v.(type) {
	case int64:
		id = n
	case int32:
		id = int64(n)
	case int:
		id = int64(n)
	case uint32:
		id = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return -1
		}
		id = int64(n)
	case float64:
		// 2^63 itself is not representable as int64.
		if n != math.Trunc(n) || n < 1 || n >= math.MaxInt64 {
			return -1
		}
		id = int64(n)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return -1
		}
		id = parsed
	}
	if id <= 0 {
		return -1
	}
	return id
}
