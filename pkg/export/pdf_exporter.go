package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth = 277.0 // landscape A4 minus margins
	nameWidth = 42.0
)

// PDFExporter renders a Dataset into a landscape roster table. The first
// column stays wide for employee names while the day columns share the rest of
// the page, which keeps even a 14-day grid legible.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title above the table.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	width := func(col int) float64 {
		if len(data.Columns) == 1 {
			return pageWidth
		}
		if col == 0 {
			return nameWidth
		}
		return (pageWidth - nameWidth) / float64(len(data.Columns)-1)
	}

	pdf.SetFont("Arial", "B", 8)
	for col, header := range data.Columns {
		pdf.CellFormat(width(col), 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for col := range data.Columns {
			var value string
			if col < len(row) {
				value = row[col]
			}
			align := "C"
			if col == 0 {
				align = "L"
			}
			pdf.CellFormat(width(col), 7, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
