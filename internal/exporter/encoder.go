package exporter

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// RowEncoder defines a common interface for different export formats (CSV, JSON, Excel, PDF).
// It allows the exporter to be agnostic of the underlying output format.
type RowEncoder interface {
	// WriteHeader writes the initial column headers to the output.
	// It is called exactly once, before any rows are written.
	WriteHeader(columns []string) error

	// WriteRow writes a single row of data, in header order.
	WriteRow(values []any) error

	// Error returns the first error that occurred during encoding, if any.
	Error() error

	// Close flushes buffered output and releases resources. Formats that
	// need a footer (Excel, PDF) write the whole document here.
	io.Closer
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch format {
	case "excel":
		return "xlsx"
	case "json":
		return "jsonl"
	case "":
		return "csv"
	default:
		return format
	}
}

// NewEncoder returns the encoder for format, writing to w.
func NewEncoder(format string, w io.Writer) (RowEncoder, error) {
	switch format {
	case "", "csv":
		return NewCSVEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "excel":
		return NewExcelEncoder(w), nil
	case "pdf":
		return NewPDFEncoder(w), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// cellText renders a driver value as text. NULL is rendered as "NULL".
func cellText(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

// guardFormula prefixes values a spreadsheet would evaluate as a formula.
func guardFormula(s string) string {
	if len(s) > 0 {
		switch s[0] {
		case '=', '+', '-', '@':
			return "'" + s
		}
	}
	return s
}
