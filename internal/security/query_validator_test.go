package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuery_Allows(t *testing.T) {
	for _, q := range []string{
		"SELECT * FROM users",
		"  select id, deleted_at from orders where is_deleted = 0;",
		"WITH recent AS (SELECT id FROM orders) SELECT * FROM recent",
		"SELECT updated_at FROM users ORDER BY created_at",
	} {
		assert.NoError(t, ValidateQuery(q), q)
	}
}

func TestValidateQuery_Rejects(t *testing.T) {
	cases := map[string]error{
		"DELETE FROM users":                      ErrNotSelect,
		"SELECT 1; DROP TABLE users":             ErrMultipleQueries,
		"SELECT * FROM users UNION SELECT 1":     ErrUnsafeQuery,
		"SELECT name FROM sqlite_master":         ErrUnsafeQuery,
		"SELECT * FROM pg_catalog.pg_tables":     ErrUnsafeQuery,
		"SELECT * FROM information_schema.users": ErrUnsafeQuery,
		"SELECT version() AS v":                  ErrUnsafeQuery,
	}
	for q, want := range cases {
		err := ValidateQuery(q)
		assert.ErrorIs(t, err, want, q)
		assert.ErrorIs(t, err, ErrUnsafeQuery, q)
	}
}
