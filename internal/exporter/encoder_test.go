package exporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCSVEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewCSVEncoder(&buf)

	require.NoError(t, enc.WriteHeader([]string{"id", "name", "note"}))
	require.NoError(t, enc.WriteRow([]any{int64(-1), "a,b", nil}))
	require.NoError(t, enc.WriteRow([]any{int64(2), []byte("=SUM(A1)"), 1.5}))
	assert.Empty(t, buf.String(), "output is buffered until Close")
	require.NoError(t, enc.Close())

	assert.Equal(t, "id,name,note\n-1,\"a,b\",NULL\n2,'=SUM(A1),1.5\n", buf.String())
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewJSONEncoder(&buf)

	require.NoError(t, enc.WriteHeader([]string{"id", "name"}))
	require.NoError(t, enc.WriteRow([]any{int64(1), []byte("x")}))
	require.NoError(t, enc.WriteRow([]any{int64(2), nil, true}))
	require.NoError(t, enc.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, map[string]any{"id": float64(1), "name": "x"}, first)
	assert.Equal(t, map[string]any{"id": float64(2), "name": nil, "column_2": true}, second)
}

func TestExcelEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewExcelEncoder(&buf)

	require.NoError(t, enc.WriteHeader([]string{"id", "name"}))
	require.NoError(t, enc.WriteRow([]any{int64(7), "+cmd"}))
	require.NoError(t, enc.Close())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"7", "'+cmd"}}, rows)
}

func TestPDFEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewPDFEncoder(&buf)

	require.NoError(t, enc.WriteHeader([]string{"id", "when"}))
	require.NoError(t, enc.WriteRow([]any{int64(1), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}))
	require.NoError(t, enc.Close())

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("%%EOF")), "document written once")
}

func TestNewEncoder(t *testing.T) {
	for _, format := range []string{"", "csv", "json", "excel", "pdf"} {
		enc, err := NewEncoder(format, &bytes.Buffer{})
		require.NoError(t, err, format)
		assert.NotNil(t, enc)
	}
	_, err := NewEncoder("xml", &bytes.Buffer{})
	assert.Error(t, err)

	assert.Equal(t, "xlsx", Extension("excel"))
	assert.Equal(t, "jsonl", Extension("json"))
	assert.Equal(t, "csv", Extension(""))
	assert.Equal(t, "pdf", Extension("pdf"))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "NULL", cellText(nil))
	assert.Equal(t, "2024-01-02 03:04:05", cellText(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, "1", cellText(true))
	assert.Equal(t, "0.25", cellText(0.25))
	assert.Equal(t, "'@x", guardFormula("@x"))
	assert.Equal(t, "x", guardFormula("x"))
}
