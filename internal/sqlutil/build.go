package sqlutil

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidStatement is wrapped by every Build error.
var ErrInvalidStatement = errors.New("invalid sql statement")

// Select describes a SELECT statement.
type Select struct {
	// Fields lists the selected expressions. Empty selects "*".
	Fields []string
	// Table is the FROM clause.
	Table string
	// Where is an optional filter, inserted verbatim.
	Where string
	// Order is an optional ORDER BY clause body.
	Order string
	// Limit caps the number of rows when > 0.
	Limit int
}

// Build renders the SELECT statement.
func (s Select) Build() (string, error) {
	if s.Table == "" {
		return "", fmt.Errorf("%w: no table specified in select", ErrInvalidStatement)
	}
	if s.Limit < 0 {
		return "", fmt.Errorf("%w: negative limit %d", ErrInvalidStatement, s.Limit)
	}

	fields := "*"
	if len(s.Fields) > 0 {
		fields = strings.Join(s.Fields, ",")
	}

	var sb strings.Builder
	sb.WriteString("select ")
	sb.WriteString(fields)
	sb.WriteString(" from ")
	sb.WriteString(s.Table)
	if s.Where != "" {
		sb.WriteString(" where ")
		sb.WriteString(s.Where)
	}
	if s.Order != "" {
		sb.WriteString(" order by ")
		sb.WriteString(s.Order)
	}
	if s.Limit > 0 {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.Itoa(s.Limit))
	}
	return sb.String(), nil
}

// Insert describes a single-row INSERT. Values maps a column to a literal SQL
// expression (use Quote for strings).
type Insert struct {
	Table  string
	Values map[string]string
}

// Build renders the INSERT statement with columns in sorted order.
func (s Insert) Build() (string, error) {
	if s.Table == "" {
		return "", fmt.Errorf("%w: no table specified in insert", ErrInvalidStatement)
	}
	if len(s.Values) == 0 {
		return "", fmt.Errorf("%w: no values specified in insert", ErrInvalidStatement)
	}

	names := sortedKeys(s.Values)
	values := make([]string, len(names))
	for i, name := range names {
		v := s.Values[name]
		if v == "" {
			return "", fmt.Errorf("%w: empty value for column %s", ErrInvalidStatement, name)
		}
		values[i] = v
	}

	return "INSERT INTO " + s.Table + "(" + strings.Join(names, ",") + ") VALUES (" + strings.Join(values, ",") + ")", nil
}

// Update describes an UPDATE. Fields values are interpolated verbatim.
type Update struct {
	Table  string
	Fields map[string]string
	Where  string
}

// Build renders the UPDATE statement with assignments in sorted order.
func (s Update) Build() (string, error) {
	if s.Table == "" {
		return "", fmt.Errorf("%w: no table specified in update", ErrInvalidStatement)
	}
	if len(s.Fields) == 0 {
		return "", fmt.Errorf("%w: no fields specified in update", ErrInvalidStatement)
	}

	names := sortedKeys(s.Fields)
	set := make([]string, len(names))
	for i, name := range names {
		v := s.Fields[name]
		if v == "" {
			return "", fmt.Errorf("%w: empty value for column %s", ErrInvalidStatement, name)
		}
		set[i] = name + " = " + v
	}

	sql := "update " + s.Table + " SET " + strings.Join(set, ",")
	if s.Where != "" {
		sql += " where " + s.Where
	}
	return sql, nil
}

// Delete describes a DELETE. Where is required so a table is never wiped by
// accident.
type Delete struct {
	Table string
	Where string
}

// Build renders the DELETE statement.
func (s Delete) Build() (string, error) {
	if s.Table == "" {
		return "", fmt.Errorf("%w: no table specified in delete", ErrInvalidStatement)
	}
	if s.Where == "" {
		return "", fmt.Errorf("%w: no where clause specified in delete", ErrInvalidStatement)
	}
	return "DELETE FROM " + s.Table + " WHERE " + s.Where, nil
}

// BuildInsertSQL renders a multi-row INSERT. The column list is taken from
// the first row; later rows missing a column get NULL. It returns "" when
// rows is empty.
func BuildInsertSQL(table string, rows []map[string]string) string {
	if len(rows) == 0 {
		return ""
	}

	names := sortedKeys(rows[0])

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(names, ","))
	sb.WriteString(" ) VALUES \n")

	tuples := make([]string, len(rows))
	for j, row := range rows {
		values := make([]string, len(names))
		for i, name := range names {
			v, ok := row[name]
			if !ok || v == "" {
				v = "NULL"
			}
			values[i] = v
		}
		tuples[j] = "(" + strings.Join(values, ",") + ")"
	}
	sb.WriteString(strings.Join(tuples, ",\n"))
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
