package ledger

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRows returns the header and the last limit written rows of the ledger
// at path. A non-positive limit returns every row.
func ReadRows(path string, limit int) ([]string, [][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	defer book.Close()

	s, err := loadSheet(book, book.GetSheetName(book.GetActiveSheetIndex()))
	if err != nil {
		return nil, nil, err
	}
	if len(s.header) == 0 {
		return nil, nil, nil
	}

	var rows [][]string
	for r := 2; r <= s.maxRow(); r++ {
		row := make([]string, len(s.header))
		empty := true
		for c := range row {
			row[c] = s.cell(r, c+1)
			if strings.TrimSpace(row[c]) != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return s.header, rows, nil
}
