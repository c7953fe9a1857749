package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// Column widths in millimeters, spread across an A4 portrait page.
func columnWidths(cols int) []float64 {
	const usable = 190.0
	widths := make([]float64, cols)
	for i := range widths {
		widths[i] = usable / float64(cols)
	}
	return widths
}

func writeDocument(dir, filename string, tables []table) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)

	for _, t := range tables {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 10, t.Title, "", 1, "L", false, 0, "")

		widths := columnWidths(len(t.Header))

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(22, 160, 133)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Header {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		for r, row := range t.Rows {
			fill := r%2 == 1
			pdf.SetFillColor(240, 240, 240)
			for i, v := range row {
				if i >= len(widths) {
					break
				}
				pdf.CellFormat(widths[i], 6, clip(v, 40), "1", 0, "L", fill, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	path := filepath.Join(dir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	return path, nil
}

// clip keeps cell text within the fixed column width. The document is a
// quick-reference projection, not the canonical record.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
