package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxExcelRows is the hard row limit of an .xlsx sheet.
const maxExcelRows = 1048576

// ExcelEncoder implements RowEncoder for Excel (.xlsx) files.
// It uses excelize.StreamWriter so large exports do not build a cell tree.
type ExcelEncoder struct {
	f      *excelize.File
	sw     *excelize.StreamWriter
	w      io.Writer
	rowIdx int
	err    error
}

// NewExcelEncoder creates a workbook with a single streamed sheet.
func NewExcelEncoder(w io.Writer) *ExcelEncoder {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return &ExcelEncoder{f: f, err: err}
	}
	return &ExcelEncoder{
		f:      f,
		sw:     sw,
		w:      w,
		rowIdx: 1,
	}
}

func (e *ExcelEncoder) WriteHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, col := range columns {
		row[i] = col
	}
	return e.setRow(row)
}

// WriteRow writes one row. Text cells are guarded against formula
// injection; numbers and times are passed through so Excel keeps their type.
func (e *ExcelEncoder) WriteRow(values []any) error {
	row := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil, []byte, string:
			row[i] = guardFormula(cellText(val))
		default:
			row[i] = v
		}
	}
	return e.setRow(row)
}

func (e *ExcelEncoder) setRow(row []any) error {
	if e.err != nil {
		return e.err
	}
	if e.rowIdx > maxExcelRows {
		e.err = fmt.Errorf("excel row limit exceeded (%d rows)", maxExcelRows)
		return e.err
	}

	cell, err := excelize.CoordinatesToCellName(1, e.rowIdx)
	if err != nil {
		e.err = err
		return err
	}
	if err := e.sw.SetRow(cell, row); err != nil {
		e.err = err
		return err
	}
	e.rowIdx++
	return nil
}

func (e *ExcelEncoder) Error() error {
	return e.err
}

// Close finishes the sheet and writes the workbook.
func (e *ExcelEncoder) Close() error {
	defer e.f.Close()
	if e.err != nil {
		return e.err
	}
	if err := e.sw.Flush(); err != nil {
		e.err = err
		return err
	}
	if err := e.f.Write(e.w); err != nil {
		e.err = err
		return err
	}
	return nil
}
