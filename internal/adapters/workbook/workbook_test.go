package workbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager() *Manager {
	return NewManager(NewMemStore())
}

func TestCreateListClose(t *testing.T) {
	mgr := newTestManager()

	if err := mgr.Create("budget"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mgr.Create("budget"); err == nil {
		t.Fatal("duplicate create should fail")
	}
	if err := mgr.Create("  "); err == nil {
		t.Fatal("blank name should be rejected")
	}
	if err := mgr.Create("forecast"); err != nil {
		t.Fatalf("create second: %v", err)
	}

	names := mgr.List()
	if len(names) != 2 || names[0] != "budget" || names[1] != "forecast" {
		t.Fatalf("names = %v", names)
	}

	if err := mgr.Close("budget"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := mgr.Close("budget"); err == nil {
		t.Fatal("closing a closed workbook should fail")
	}
	if got := mgr.List(); len(got) != 1 {
		t.Fatalf("names after close = %v", got)
	}
}

func TestSetAndGetCell(t *testing.T) {
	mgr := newTestManager()
	if err := mgr.Create("wb"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// float64 is what JSON number arguments decode to.
	if err := mgr.SetCell("wb", "Sheet1", "A1", float64(42)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mgr.SetCell("wb", "Sheet1", "A2", "plain text"); err != nil {
		t.Fatalf("set text: %v", err)
	}

	value, err := mgr.GetCell("wb", "Sheet1", "A1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "42" {
		t.Errorf("A1 = %q, want 42", value)
	}
	value, err = mgr.GetCell("wb", "Sheet1", "A2")
	if err != nil {
		t.Fatalf("get text: %v", err)
	}
	if value != "plain text" {
		t.Errorf("A2 = %q", value)
	}

	if _, err := mgr.GetCell("wb", "Sheet1", "Z99"); err != nil {
		t.Errorf("empty cell should read as empty, got error %v", err)
	}
}

func TestApplyFormulaComputes(t *testing.T) {
	mgr := newTestManager()
	if err := mgr.Create("calc"); err != nil {
		t.Fatalf("create: %v", err)
	}
	for cell, value := range map[string]float64{"A1": 2, "A2": 3, "A3": 5} {
		if err := mgr.SetCell("calc", "Sheet1", cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}

	computed, err := mgr.ApplyFormula("calc", "Sheet1", "B1", "SUM(A1:A3)")
	if err != nil {
		t.Fatalf("formula: %v", err)
	}
	if computed != "10" {
		t.Errorf("SUM = %q, want 10", computed)
	}

	// A leading '=' is tolerated.
	computed, err = mgr.ApplyFormula("calc", "Sheet1", "B2", "=A1*A2")
	if err != nil {
		t.Fatalf("formula with '=': %v", err)
	}
	if computed != "6" {
		t.Errorf("A1*A2 = %q, want 6", computed)
	}

	// get_cell sees the computed value, not the formula text.
	value, err := mgr.GetCell("calc", "Sheet1", "B1")
	if err != nil {
		t.Fatalf("get computed: %v", err)
	}
	if value != "10" {
		t.Errorf("B1 reads %q, want 10", value)
	}

	if _, err := mgr.ApplyFormula("calc", "Sheet1", "B3", "  "); err == nil {
		t.Fatal("empty formula should be rejected")
	}
}

func TestGetRange(t *testing.T) {
	mgr := newTestManager()
	if err := mgr.Create("grid"); err != nil {
		t.Fatalf("create: %v", err)
	}
	cells := map[string]any{"A1": "h1", "B1": "h2", "A2": float64(1), "B2": float64(2)}
	for cell, value := range cells {
		if err := mgr.SetCell("grid", "Sheet1", cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}

	rows, err := mgr.GetRange("grid", "Sheet1", "A1:B2")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "h1" || rows[1][1] != "2" {
		t.Errorf("rows = %v", rows)
	}

	// Single cell and inverted corners both normalize.
	rows, err = mgr.GetRange("grid", "Sheet1", "B2")
	if err != nil || len(rows) != 1 || rows[0][0] != "2" {
		t.Fatalf("single cell = %v, %v", rows, err)
	}
	rows, err = mgr.GetRange("grid", "Sheet1", "B2:A1")
	if err != nil || len(rows) != 2 || rows[0][0] != "h1" {
		t.Fatalf("inverted range = %v, %v", rows, err)
	}

	if _, err := mgr.GetRange("grid", "Sheet1", "not-a-range"); err == nil {
		t.Fatal("malformed range should be rejected")
	}
}

func TestSheets(t *testing.T) {
	mgr := newTestManager()
	if err := mgr.Create("wb"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := mgr.AddSheet("wb", "Data"); err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	if err := mgr.AddSheet("wb", "Data"); err == nil {
		t.Fatal("duplicate sheet should fail")
	}

	sheets, err := mgr.Sheets("wb")
	if err != nil {
		t.Fatalf("sheets: %v", err)
	}
	if len(sheets) != 2 || sheets[1] != "Data" {
		t.Fatalf("sheets = %v", sheets)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	mgr := newTestManager()
	if err := mgr.Create("src"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mgr.SetCell("src", "Sheet1", "C3", "survives"); err != nil {
		t.Fatalf("set: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := mgr.Save("src", path); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := mgr.Load("copy", path); err != nil {
		t.Fatalf("load: %v", err)
	}
	value, err := mgr.GetCell("copy", "Sheet1", "C3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "survives" {
		t.Errorf("C3 = %q", value)
	}

	if err := mgr.Load("copy", path); err == nil {
		t.Fatal("loading over an open workbook name should fail")
	}
	if err := mgr.Load("missing", filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Fatal("loading a missing file should fail")
	}
}

func TestUnknownEntitiesAreNamed(t *testing.T) {
	mgr := newTestManager()
	if err := mgr.Create("known"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := mgr.GetCell("ghost", "Sheet1", "A1")
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("unknown workbook error should name it: %v", err)
	}

	_, err = mgr.GetCell("known", "Missing", "A1")
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("unknown sheet error should name it: %v", err)
	}

	err = mgr.Save("ghost", "anywhere.xlsx")
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("save of unknown workbook should name it: %v", err)
	}
}
