package main

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeParamsWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(book.GetActiveSheetIndex())
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestParamsImportThenLookup(t *testing.T) {
	env := setupCLITestEnv(t)
	xlsxPath := filepath.Join(env.baseDir, "params.xlsx")
	writeParamsWorkbook(t, xlsxPath, [][]any{
		{"卦名", "用神", "应期"},
		{"观之否", "妻财", "寅日"},
		{"乾为天", "官鬼", ""},
	})

	out, _, err := runCLI(t, []string{"params", "import", xlsxPath, "--key", "卦名", "--param", "用神", "--param", "应期"}, env.configPath)
	if err != nil {
		t.Fatalf("params import: %v", err)
	}
	requireContains(t, out, "Imported 2 hexagrams")

	out, _, err = runCLI(t, []string{"params", "lookup", "观 之 否"}, env.configPath)
	if err != nil {
		t.Fatalf("params lookup: %v", err)
	}
	requireContains(t, out, "妻财")
	requireContains(t, out, "寅日")
	requireContains(t, out, "参数2")

	out, _, err = runCLI(t, []string{"params", "lookup", "未济", "--db", env.storePath}, "")
	if err != nil {
		t.Fatalf("params lookup missing name: %v", err)
	}
	requireContains(t, out, "No parameters for 未济")
}

func TestParamsImportRequiresColumns(t *testing.T) {
	env := setupCLITestEnv(t)
	xlsxPath := filepath.Join(env.baseDir, "params.xlsx")
	writeParamsWorkbook(t, xlsxPath, [][]any{{"卦名", "用神"}})

	if _, _, err := runCLI(t, []string{"params", "import", xlsxPath, "--param", "用神"}, env.configPath); err == nil {
		t.Fatal("expected --key to be required")
	}
	if _, _, err := runCLI(t, []string{"params", "import", xlsxPath, "--key", "卦名"}, env.configPath); err == nil {
		t.Fatal("expected at least one --param")
	}
}

func TestParamsLookupMissingStore(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"params", "lookup", "观之否"}, env.configPath); err == nil {
		t.Fatal("expected an error when the store does not exist")
	}
}
