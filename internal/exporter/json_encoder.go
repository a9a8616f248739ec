package exporter

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
)

// JSONEncoder implements RowEncoder for JSON Lines format.
// Each row is exported as a JSON object on a new line.
type JSONEncoder struct {
	buf     *bufio.Writer
	enc     *json.Encoder
	columns []string
	err     error
}

// NewJSONEncoder creates a new JSON Lines encoder.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	buf := bufio.NewWriterSize(w, 64*1024)
	return &JSONEncoder{buf: buf, enc: json.NewEncoder(buf)}
}

// WriteHeader captures the column names used as object keys. Nothing is
// written.
func (e *JSONEncoder) WriteHeader(columns []string) error {
	e.columns = columns
	return nil
}

func (e *JSONEncoder) WriteRow(values []any) error {
	if e.err != nil {
		return e.err
	}

	obj := make(map[string]any, len(values))
	for i, v := range values {
		name := "column_" + strconv.Itoa(i)
		if i < len(e.columns) {
			name = e.columns[i]
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		obj[name] = v
	}

	if err := e.enc.Encode(obj); err != nil {
		e.err = err
	}
	return e.err
}

func (e *JSONEncoder) Error() error {
	return e.err
}

func (e *JSONEncoder) Close() error {
	if e.err != nil {
		return e.err
	}
	return e.buf.Flush()
}
