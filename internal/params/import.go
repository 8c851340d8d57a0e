package params

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportOptions selects the spreadsheet columns to load.
type ImportOptions struct {
	// Sheet defaults to the workbook's active sheet.
	Sheet string
	// KeyColumn is the header naming the hexagram column.
	KeyColumn string
	// ParamColumns are the headers loaded as param_order 1..N.
	ParamColumns []string
}

// ImportResult summarizes an import.
type ImportResult struct {
	Names   int
	Rows    int
	Nulls   int
	Skipped int
}

// Import replaces the contents of the store at dbPath with the selected
// columns of the spreadsheet at xlsxPath. Every cell is read as text; blank
// cells become NULL placeholders so value positions survive. Rows without a
// name are skipped and a repeated name keeps only its last row.
func Import(ctx context.Context, dbPath, xlsxPath string, opts ImportOptions) (ImportResult, error) {
	var result ImportResult
	if strings.TrimSpace(opts.KeyColumn) == "" {
		return result, errors.New("key column is required")
	}
	if len(opts.ParamColumns) == 0 {
		return result, errors.New("at least one parameter column is required")
	}

	book, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return result, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = book.GetSheetName(book.GetActiveSheetIndex())
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return result, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return result, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		if name = strings.TrimSpace(name); name != "" {
			if _, dup := header[name]; !dup {
				header[name] = i
			}
		}
	}
	keyIdx, ok := header[strings.TrimSpace(opts.KeyColumn)]
	if !ok {
		return result, fmt.Errorf("key column %q not found", opts.KeyColumn)
	}
	paramIdx := make([]int, len(opts.ParamColumns))
	for i, col := range opts.ParamColumns {
		idx, ok := header[strings.TrimSpace(col)]
		if !ok {
			return result, fmt.Errorf("parameter column %q not found", col)
		}
		paramIdx[i] = idx
	}

	store, err := Open(dbPath, false)
	if err != nil {
		return result, err
	}
	defer store.Close()

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM gui_para`); err != nil {
		return result, fmt.Errorf("clear %s: %w", Table, err)
	}

	// nulls holds the NULL count of each name's current rows.
	nulls := make(map[string]int)
	for _, row := range rows[1:] {
		name := cellText(row, keyIdx)
		if name == "" {
			result.Skipped++
			continue
		}
		if prev, ok := nulls[name]; ok {
			res, err := tx.ExecContext(ctx, `DELETE FROM gui_para WHERE name = ?`, name)
			if err != nil {
				return result, fmt.Errorf("replace %q: %w", name, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				result.Rows -= int(n)
			}
			result.Nulls -= prev
		}
		nulls[name] = 0
		for order, idx := range paramIdx {
			var value any
			if text := cellText(row, idx); text != "" {
				value = text
			} else {
				nulls[name]++
				result.Nulls++
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO gui_para (name, param_order, param_value) VALUES (?, ?, ?)`,
				name, order+1, value); err != nil {
				return result, fmt.Errorf("insert %q: %w", name, err)
			}
			result.Rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit import: %w", err)
	}
	result.Names = len(nulls)
	return result, nil
}

func cellText(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
