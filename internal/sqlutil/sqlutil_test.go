package sqlutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeAndQuote(t *testing.T) {
	assert.Equal(t, "O''Brien 100%%", EscapeString("O'Brien 100%"))
	assert.Equal(t, "'O''Brien'", Quote("O'Brien"))
	assert.Equal(t, "NULL", QuoteOrNull(""))
	assert.Equal(t, "'x'", QuoteOrNull("x"))
	assert.Equal(t, " like 'ab''c%'", BeginsWith("ab'c"))
	assert.Equal(t, " like '%50%%%'", Contains("50%"))
}

func TestIntOrNull(t *testing.T) {
	cases := map[string]string{
		"42":   "42",
		" -7 ": "-7",
		"12px": "12",
		"abc":  "NULL",
		"":     "NULL",
		"-":    "NULL",
	}
	for in, want := range cases {
		assert.Equal(t, want, IntOrNull(in), "input %q", in)
	}
}

func TestIfNull(t *testing.T) {
	assert.Equal(t, "def", IfNull(nil, "def"))
	assert.Equal(t, 0, IfNull(0, "def"))
}

func TestCheckBoxVal(t *testing.T) {
	assert.Equal(t, "D", CheckBoxVal(nil, "D", CheckBox{}))
	assert.Equal(t, "1", CheckBoxVal("on", "D", CheckBox{}))
	assert.Equal(t, "0", CheckBoxVal("off", "D", CheckBox{}))
	assert.Equal(t, "'Y'", CheckBoxVal(true, "D", CheckBox{Checked: "'Y'", Unchecked: "'N'"}))
	assert.Equal(t, "'N'", CheckBoxVal(0, "D", CheckBox{Checked: "'Y'", Unchecked: "'N'"}))
}

func TestSelectBuild(t *testing.T) {
	sql, err := Select{
		Fields: []string{"a", "b"},
		Table:  "t",
		Where:  "a > 1",
		Order:  "b desc",
		Limit:  10,
	}.Build()
	require.NoError(t, err)
	assert.Equal(t, "select a,b from t where a > 1 order by b desc limit 10", sql)

	sql, err = Select{Table: "t"}.Build()
	require.NoError(t, err)
	assert.Equal(t, "select * from t", sql)

	_, err = Select{Fields: []string{"a"}}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)

	_, err = Select{Table: "t", Limit: -1}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)
}

func TestInsertBuild(t *testing.T) {
	sql, err := Insert{Table: "t", Values: map[string]string{"b": "'x'", "a": "1"}}.Build()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t(a,b) VALUES (1,'x')", sql)

	_, err = Insert{Table: "t"}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)

	_, err = Insert{Values: map[string]string{"a": "1"}}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)

	_, err = Insert{Table: "t", Values: map[string]string{"a": ""}}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)
}

func TestUpdateBuild(t *testing.T) {
	sql, err := Update{Table: "t", Fields: map[string]string{"b": "2", "a": "a + 1"}, Where: "id = 3"}.Build()
	require.NoError(t, err)
	assert.Equal(t, "update t SET a = a + 1,b = 2 where id = 3", sql)

	_, err = Update{Table: "t"}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)
}

func TestDeleteBuild(t *testing.T) {
	sql, err := Delete{Table: "t", Where: "id=1"}.Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE id=1", sql)

	_, err = Delete{Table: "t"}.Build()
	assert.ErrorIs(t, err, ErrInvalidStatement)
}

func TestBuildInsertSQL(t *testing.T) {
	assert.Equal(t, "", BuildInsertSQL("t", nil))

	sql := BuildInsertSQL("t", []map[string]string{
		{"a": "1", "b": "'x'"},
		{"a": "2"},
	})
	assert.Equal(t, "INSERT INTO t (a,b ) VALUES \n(1,'x'),\n(2,NULL)", sql)
}

func TestFormatters(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "2024-03-05", FormatDate(ts))
	assert.Equal(t, "07:08:09", FormatTime(ts))
	assert.Equal(t, "2024-03-05 07:08:09", FormatDateTime(ts))
	assert.Len(t, FormatDateTime(time.Time{}), len("2006-01-02 15:04:05"))
}
