package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"scribe/internal/reading"
)

// sheet is a name-addressed view over one worksheet. Rows and columns are
// 1-based, matching excelize.
type sheet struct {
	book   *excelize.File
	name   string
	header []string
	rows   [][]string
}

func loadSheet(book *excelize.File, name string) (*sheet, error) {
	rows, err := book.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	s := &sheet{book: book, name: name, rows: rows}
	if len(rows) > 0 {
		for _, h := range rows[0] {
			s.header = append(s.header, strings.TrimSpace(h))
		}
	}
	blank := true
	for _, h := range s.header {
		if h != "" {
			blank = false
			break
		}
	}
	if blank {
		s.header = nil
	}
	return s, nil
}

// maxRow is the last row holding any value, header included.
func (s *sheet) maxRow() int {
	if len(s.rows) == 0 {
		return 1
	}
	return len(s.rows)
}

func (s *sheet) index(column string) int {
	for i, h := range s.header {
		if h == column {
			return i + 1
		}
	}
	return 0
}

// ensureColumn appends column at the right edge when missing.
func (s *sheet) ensureColumn(column string) bool {
	if s.index(column) > 0 {
		return false
	}
	s.header = append(s.header, column)
	cell, _ := excelize.CoordinatesToCellName(len(s.header), 1)
	_ = s.book.SetCellStr(s.name, cell, column)
	return true
}

func (s *sheet) ensureColumns(columns []string) bool {
	changed := false
	for _, c := range columns {
		if s.ensureColumn(c) {
			changed = true
		}
	}
	return changed
}

func (s *sheet) cell(row, col int) string {
	if row < 1 || col < 1 || row > len(s.rows) {
		return ""
	}
	r := s.rows[row-1]
	if col > len(r) {
		return ""
	}
	return r[col-1]
}

// lastWrittenRow returns the bottom-most data row with a write timestamp.
func (s *sheet) lastWrittenRow(colTime int) int {
	for r := s.maxRow(); r >= 2; r-- {
		if strings.TrimSpace(s.cell(r, colTime)) != "" {
			return r
		}
	}
	return 0
}

// latestStampedRow returns the data row whose write timestamp is the most
// recent. Timestamps that parse beat those that do not; ties go to the later
// row. With no parseable timestamp it falls back to lastWrittenRow.
func (s *sheet) latestStampedRow(colTime int) int {
	best := 0
	var bestAt time.Time
	for r := 2; r <= s.maxRow(); r++ {
		at, err := time.ParseInLocation(reading.WrittenAtLayout, strings.TrimSpace(s.cell(r, colTime)), time.Local)
		if err != nil {
			continue
		}
		if best == 0 || !at.Before(bestAt) {
			best, bestAt = r, at
		}
	}
	if best == 0 {
		return s.lastWrittenRow(colTime)
	}
	return best
}

// recentDuplicate returns the most recently written row when its content hash
// equals hash, or 0. Placeholder filling means the newest row is not always
// the bottom one, so both the latest-stamped and bottom-most rows count.
func (s *sheet) recentDuplicate(colTime, colHash int, hash string) int {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return 0
	}
	for _, row := range []int{s.latestStampedRow(colTime), s.lastWrittenRow(colTime)} {
		if row > 0 && strings.TrimSpace(s.cell(row, colHash)) == hash {
			return row
		}
	}
	return 0
}

// firstOpenRow returns the first data row whose write timestamp is blank,
// or the row past the end.
func (s *sheet) firstOpenRow(colTime int) int {
	last := s.maxRow()
	for r := 2; r <= last; r++ {
		if strings.TrimSpace(s.cell(r, colTime)) == "" {
			return r
		}
	}
	return last + 1
}

func (s *sheet) set(row, col int, value any) error {
	if col < 1 {
		return fmt.Errorf("unknown column for row %d", row)
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.book.SetCellValue(s.name, cell, value); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	return nil
}
