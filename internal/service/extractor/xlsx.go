package extractor

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX walks every sheet row by row, joining non-empty cell values
// with spaces. Empty rows are dropped. Legacy .xls files hit the same parser
// and degrade to empty when it rejects them.
func extractXLSX(data []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer workbook.Close()

	var lines []string
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			continue
		}

		for _, row := range rows {
			var cells []string
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " "))
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
