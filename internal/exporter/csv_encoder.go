package exporter

import (
	"bufio"
	"encoding/csv"
	"io"
)

// CSVEncoder wraps encoding/csv with a 64KB buffer to keep syscalls down on
// large exports.
type CSVEncoder struct {
	w   *csv.Writer
	buf *bufio.Writer
}

// NewCSVEncoder creates a new CSV encoder that writes to the provided io.Writer.
func NewCSVEncoder(w io.Writer) *CSVEncoder {
	buf := bufio.NewWriterSize(w, 64*1024)
	return &CSVEncoder{
		w:   csv.NewWriter(buf),
		buf: buf,
	}
}

// WriteHeader writes the CSV header row.
func (e *CSVEncoder) WriteHeader(columns []string) error {
	return e.w.Write(columns)
}

// WriteRow writes a single row. Text that looks like a formula is prefixed
// with a quote (CSV injection); numbers are left alone.
func (e *CSVEncoder) WriteRow(values []any) error {
	record := make([]string, len(values))
	for i, v := range values {
		switch v.(type) {
		case string, []byte:
			record[i] = guardFormula(cellText(v))
		default:
			record[i] = cellText(v)
		}
	}
	return e.w.Write(record)
}

// Error returns any error stored in the CSV writer.
func (e *CSVEncoder) Error() error {
	return e.w.Error()
}

// Close flushes everything to the underlying writer.
func (e *CSVEncoder) Close() error {
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return err
	}
	return e.buf.Flush()
}
