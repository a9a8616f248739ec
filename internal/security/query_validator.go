package security

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsafeQuery     = errors.New("unsafe query detected")
	ErrMultipleQueries = errors.New("multi-statement queries are not allowed")
	ErrNotSelect       = errors.New("only SELECT queries are allowed")
)

// ValidateQuery guards the export command, which only ever reads:
//  1. Must be a SELECT (or WITH ... SELECT) statement.
//  2. Must not contain multiple statements. One trailing semicolon is allowed.
//  3. Must not contain destructive keywords (DELETE, DROP, UPDATE, etc.).
//  4. Must not access system catalogs of MySQL, Postgres or SQLite.
//
// Every error wraps ErrUnsafeQuery.
func ValidateQuery(query string) error {
	q := strings.TrimSuffix(strings.TrimSpace(query), ";")
	qUpper := strings.ToUpper(strings.TrimSpace(q))

	// Rule 1: Must start with SELECT
	if !strings.HasPrefix(qUpper, "SELECT") && !strings.HasPrefix(qUpper, "WITH") {
		return fmt.Errorf("%w: %w", ErrUnsafeQuery, ErrNotSelect)
	}

	// Rule 2: No semicolons (prevent stacking)
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: %w", ErrUnsafeQuery, ErrMultipleQueries)
	}

	// Rule 3: Deny list of DML/DDL keywords and leakage vectors
	forbidden := []string{
		"DELETE", "DROP", "INSERT", "UPDATE", "ALTER", "TRUNCATE", "GRANT", "REVOKE",
		"CREATE", "REPLACE", "CALL", "DO", "HANDLER", "LOAD", "UNION",
		"USER(", "VERSION(", "DATABASE(", "LOAD_FILE(", "@@VERSION", "@@HOSTNAME",
	}

	for _, word := range forbidden {
		if containsWord(qUpper, word) {
			return fmt.Errorf("%w: forbidden keyword %s", ErrUnsafeQuery, word)
		}
	}

	// Rule 4: Prevent access to system tables
	systemTables := []string{
		"INFORMATION_SCHEMA", "MYSQL", "PERFORMANCE_SCHEMA", "SYS",
		"PG_CATALOG", "PG_SHADOW", "PG_AUTHID",
		"SQLITE_MASTER", "SQLITE_SCHEMA", "SQLITE_TEMP_MASTER",
	}
	for _, table := range systemTables {
		if containsWord(qUpper, table) {
			return fmt.Errorf("%w: system table %s", ErrUnsafeQuery, table)
		}
	}

	return nil
}

// containsWord reports whether word occurs in s between SQL delimiters, so
// "DELETE" matches but "IS_DELETED" does not. s must be uppercase.
func containsWord(s, word string) bool {
	if !strings.Contains(s, word) {
		return false
	}

	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i == -1 {
			return false
		}
		start := idx + i
		end := start + len(word)

		// Check previous char
		isStartValid := start == 0 || isBoundary(s[start-1])
		// Check next char
		isEndValid := end == len(s) || isBoundary(s[end])

		if isStartValid && isEndValid {
			return true
		}

		idx = start + 1
	}
}

func isBoundary(b byte) bool {
	// Standard SQL delimiters
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' ||
		b == '(' || b == ')' || b == ',' || b == '=' ||
		b == '<' || b == '>' || b == '`' || b == '.' ||
		b == '"' || b == '[' || b == ']'
}
