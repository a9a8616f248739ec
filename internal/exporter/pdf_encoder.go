package exporter

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// rowHeight is the cell height in mm.
const rowHeight = 7.0

// PDFEncoder renders rows as a bordered grid on landscape A4 pages.
// The whole document is held in memory until Close.
type PDFEncoder struct {
	pdf      *fpdf.Fpdf
	w        io.Writer
	colWidth float64
	err      error
}

// NewPDFEncoder creates a new PDF encoder.
func NewPDFEncoder(w io.Writer) *PDFEncoder {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 10)
	pdf.AddPage()
	return &PDFEncoder{pdf: pdf, w: w}
}

// WriteHeader writes the table headers in bold. Columns share the usable
// page width equally.
func (e *PDFEncoder) WriteHeader(columns []string) error {
	if e.err != nil {
		return e.err
	}

	pageWidth, _ := e.pdf.GetPageSize()
	left, _, right, _ := e.pdf.GetMargins()
	if len(columns) > 0 {
		e.colWidth = (pageWidth - left - right) / float64(len(columns))
	}

	e.pdf.SetFont("Arial", "B", 10)
	for _, col := range columns {
		e.pdf.CellFormat(e.colWidth, rowHeight, col, "1", 0, "C", false, 0, "")
	}
	e.pdf.Ln(-1)
	e.pdf.SetFont("Arial", "", 10)
	return e.check()
}

// WriteRow writes a single row of data.
func (e *PDFEncoder) WriteRow(values []any) error {
	if e.err != nil {
		return e.err
	}
	for _, v := range values {
		e.pdf.CellFormat(e.colWidth, rowHeight, cellText(v), "1", 0, "L", false, 0, "")
	}
	e.pdf.Ln(-1)
	return e.check()
}

func (e *PDFEncoder) check() error {
	if err := e.pdf.Error(); err != nil {
		e.err = err
	}
	return e.err
}

// Error returns any stored error.
func (e *PDFEncoder) Error() error {
	return e.err
}

// Close writes the document to the underlying writer.
func (e *PDFEncoder) Close() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.pdf.Output(e.w)
	return e.err
}
