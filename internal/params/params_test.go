package params

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"scribe/internal/faults"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  乾为天  ", "乾为天"},
		{"火 天　大有", "火天大有"},
		{"乾；坤，震：巽", "乾;坤,震:巽"},
		{"\t山\n泽 ", "山泽"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) got %q want %q", tt.in, got, tt.want)
		}
	}
}

func seedStore(t *testing.T, rows [][3]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.db")
	store, err := Open(path, false)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	for _, row := range rows {
		if _, err := store.db.Exec(
			`INSERT INTO gui_para (name, param_order, param_value) VALUES (?, ?, ?)`,
			row[0], row[1], row[2]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestLookupOrdersAndKeepsNullPositions(t *testing.T) {
	path := seedStore(t, [][3]any{
		{"火天 大有", 3, " c "},
		{"火天 大有", 1, "a"},
		{"火天 大有", 2, nil},
		{"乾为天", 1, "x"},
	})
	store, err := Open(path, true)
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	defer store.Close()

	got, err := store.Lookup(context.Background(), "火天大有")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "", "c"}, got); diff != "" {
		t.Fatalf("lookup mismatch (-want +got):\n%s", diff)
	}

	ok, err := store.HasTable(context.Background())
	if err != nil || !ok {
		t.Fatalf("HasTable got %v, %v", ok, err)
	}
	n, err := store.Count(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("Count got %d, %v want 4", n, err)
	}
}

func TestResolverFallback(t *testing.T) {
	path := seedStore(t, [][3]any{
		{"乾为天", 1, "p1"},
		{"乾为天", 2, "p2"},
		{"坤为地", 1, "k1"},
	})
	r := Resolver{Path: path}
	ctx := context.Background()

	tests := []struct {
		name     string
		key      string
		fallback string
		want     []string
	}{
		{"primary hit", "乾为天", "坤为地", []string{"p1", "p2"}},
		{"fallback used", "乾为天之坤为地", "坤为地", []string{"k1"}},
		{"blank fallback", "未知", "  ", nil},
		{"both miss", "未知", "也未知", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.key, tt.fallback)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolverMissingStore(t *testing.T) {
	r := Resolver{Path: filepath.Join(t.TempDir(), "absent.db")}
	values, err := r.Resolve(context.Background(), "乾为天", "")
	if !faults.Is(err, faults.StoreUnavailable) {
		t.Fatalf("expected store_unavailable, got %v", err)
	}
	if !errors.Is(err, ErrStoreMissing) {
		t.Fatalf("expected ErrStoreMissing in chain, got %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected no values, got %v", values)
	}
}

func TestImportReplacesTable(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "params.xlsx")
	book := excelize.NewFile()
	sheet := book.GetSheetName(book.GetActiveSheetIndex())
	rows := [][]any{
		{"卦名", "备注", "参数A", "参数B"},
		{"乾为天", "old", "1", "2"},
		{"", "skip", "x", "y"},
		{"坤为地", "", "", "4"},
		{"乾为天", "new", "9", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := book.SaveAs(xlsxPath); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = book.Close()

	dbPath := seedStore(t, [][3]any{{"旧", 1, "gone"}})
	res, err := Import(context.Background(), dbPath, xlsxPath, ImportOptions{
		KeyColumn:    "卦名",
		ParamColumns: []string{"参数A", "参数B"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := ImportResult{Names: 2, Rows: 4, Nulls: 2, Skipped: 1}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("import result mismatch (-want +got):\n%s", diff)
	}

	r := Resolver{Path: dbPath}
	got, err := r.Resolve(context.Background(), "乾为天", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"9", ""}, got); diff != "" {
		t.Fatalf("last duplicate should win (-want +got):\n%s", diff)
	}
	if got, _ := r.Resolve(context.Background(), "旧", ""); len(got) != 0 {
		t.Fatalf("expected old rows cleared, got %v", got)
	}
}

func TestImportDuplicateDropsEarlierNulls(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "params.xlsx")
	book := excelize.NewFile()
	sheet := book.GetSheetName(book.GetActiveSheetIndex())
	rows := [][]any{
		{"卦名", "参数A", "参数B"},
		{"乾为天", "", ""},
		{"乾为天", "1", "2"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := book.SaveAs(xlsxPath); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = book.Close()

	res, err := Import(context.Background(), filepath.Join(dir, "params.db"), xlsxPath, ImportOptions{
		KeyColumn:    "卦名",
		ParamColumns: []string{"参数A", "参数B"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := ImportResult{Names: 1, Rows: 2, Nulls: 0}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("import result mismatch (-want +got):\n%s", diff)
	}
}

func TestStorePathWithURIDelimiters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a?b#c")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "params.db")
	store, err := Open(path, false)
	if err != nil {
		t.Fatalf("open writable: %v", err)
	}
	if _, err := store.db.Exec(
		`INSERT INTO gui_para (name, param_order, param_value) VALUES (?, ?, ?)`,
		"乾为天", 1, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = store.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store not created at %s: %v", path, err)
	}

	got, err := (Resolver{Path: path}).Resolve(context.Background(), "乾为天", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"x"}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestImportMissingColumn(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "params.xlsx")
	book := excelize.NewFile()
	_ = book.SetCellValue("Sheet1", "A1", "卦名")
	if err := book.SaveAs(xlsxPath); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = book.Close()
	_, err := Import(context.Background(), filepath.Join(dir, "p.db"), xlsxPath, ImportOptions{
		KeyColumn:    "卦名",
		ParamColumns: []string{"参数A"},
	})
	if err == nil {
		t.Fatal("expected error for missing parameter column")
	}
}
