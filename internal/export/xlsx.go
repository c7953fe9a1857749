package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the spreadsheet format's sheet-name limit.
const maxSheetName = 31

func writeWorkbook(dir, filename string, tables []table) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	for i, t := range tables {
		name := sheetName(t.Title)
		if i == 0 {
			// Reuse the default sheet for the first table.
			if err := wb.SetSheetName(wb.GetSheetName(0), name); err != nil {
				return "", fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return "", fmt.Errorf("add sheet %q: %w", name, err)
		}

		header := make([]any, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		if err := wb.SetSheetRow(name, "A1", &header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}

		for r, row := range t.Rows {
			cells := make([]any, len(row))
			for j, v := range row {
				cells[j] = v
			}
			addr, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return "", err
			}
			if err := wb.SetSheetRow(name, addr, &cells); err != nil {
				return "", fmt.Errorf("write row: %w", err)
			}
		}
	}

	path := filepath.Join(dir, filename)
	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func sheetName(title string) string {
	runes := []rune(title)
	if len(runes) > maxSheetName {
		return string(runes[:maxSheetName])
	}
	return title
}
