// Package workbook adapts spreadsheets over excelize: in-memory
// workbooks with sheet, cell, range, and formula operations. Formulas
// run through excelize's calc engine, so arithmetic comes back
// computed, not as formula text.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) book(name string) (*excelize.File, error) {
	file, ok := m.store.Get(name)
	if !ok {
		return nil, fmt.Errorf("workbook %q is not open", name)
	}
	return file, nil
}

func (m *Manager) sheet(file *excelize.File, name, sheet string) error {
	idx, err := file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}
	if idx < 0 {
		return fmt.Errorf("sheet %q does not exist in workbook %q", sheet, name)
	}
	return nil
}

// Create opens a fresh workbook under the given name.
func (m *Manager) Create(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("workbook name is required")
	}
	if _, ok := m.store.Get(name); ok {
		return fmt.Errorf("workbook %q already exists", name)
	}
	m.store.Put(name, excelize.NewFile())
	return nil
}

// Load reads an xlsx file from disk into the store.
func (m *Manager) Load(name, path string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("workbook name is required")
	}
	if _, ok := m.store.Get(name); ok {
		return fmt.Errorf("workbook %q already exists", name)
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	m.store.Put(name, file)
	return nil
}

// Save writes a workbook to disk. The workbook stays open.
func (m *Manager) Save(name, path string) error {
	file, err := m.book(name)
	if err != nil {
		return err
	}
	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Close drops a workbook from the store. Unsaved changes are lost.
func (m *Manager) Close(name string) error {
	file, ok := m.store.Delete(name)
	if !ok {
		return fmt.Errorf("workbook %q is not open", name)
	}
	return file.Close()
}

func (m *Manager) List() []string {
	return m.store.Names()
}

func (m *Manager) AddSheet(name, sheet string) error {
	file, err := m.book(name)
	if err != nil {
		return err
	}
	idx, err := file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}
	if idx >= 0 {
		return fmt.Errorf("sheet %q already exists in workbook %q", sheet, name)
	}
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	return nil
}

func (m *Manager) Sheets(name string) ([]string, error) {
	file, err := m.book(name)
	if err != nil {
		return nil, err
	}
	return file.GetSheetList(), nil
}

// SetCell writes a value preserving its JSON type: numbers stay
// numeric so formulas can reach them.
func (m *Manager) SetCell(name, sheet, cell string, value any) error {
	file, err := m.book(name)
	if err != nil {
		return err
	}
	if err := m.sheet(file, name, sheet); err != nil {
		return err
	}
	if err := file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", cell, err)
	}
	return nil
}

// GetCell returns the computed value of a cell; formula cells evaluate
// through the calc engine. Cells the engine cannot compute fall back to
// their stored value.
func (m *Manager) GetCell(name, sheet, cell string) (string, error) {
	file, err := m.book(name)
	if err != nil {
		return "", err
	}
	if err := m.sheet(file, name, sheet); err != nil {
		return "", err
	}
	value, err := file.CalcCellValue(sheet, cell)
	if err == nil {
		return value, nil
	}
	raw, rawErr := file.GetCellValue(sheet, cell)
	if rawErr != nil {
		return "", fmt.Errorf("failed to read %s: %w", cell, err)
	}
	return raw, nil
}

// GetRange returns raw cell values for a rectangular range like A1:C3.
// A single cell reference is treated as a 1x1 range.
func (m *Manager) GetRange(name, sheet, rangeRef string) ([][]string, error) {
	file, err := m.book(name)
	if err != nil {
		return nil, err
	}
	if err := m.sheet(file, name, sheet); err != nil {
		return nil, err
	}

	left, top, right, bottom, err := rangeBounds(rangeRef)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, bottom-top+1)
	for y := top; y <= bottom; y++ {
		row := make([]string, 0, right-left+1)
		for x := left; x <= right; x++ {
			cell, err := excelize.CoordinatesToCellName(x, y)
			if err != nil {
				return nil, err
			}
			value, err := file.GetCellValue(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", cell, err)
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ApplyFormula stores a formula in a cell and returns its computed
// value. A leading '=' is accepted and stripped.
func (m *Manager) ApplyFormula(name, sheet, cell, formula string) (string, error) {
	file, err := m.book(name)
	if err != nil {
		return "", err
	}
	if err := m.sheet(file, name, sheet); err != nil {
		return "", err
	}

	formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if formula == "" {
		return "", fmt.Errorf("formula is required")
	}
	if err := file.SetCellFormula(sheet, cell, formula); err != nil {
		return "", fmt.Errorf("failed to set formula on %s: %w", cell, err)
	}
	value, err := file.CalcCellValue(sheet, cell)
	if err != nil {
		return "", fmt.Errorf("formula stored but could not be computed: %w", err)
	}
	return value, nil
}

func rangeBounds(rangeRef string) (left, top, right, bottom int, err error) {
	parts := strings.SplitN(rangeRef, ":", 2)
	left, top, err = excelize.CellNameToCoordinates(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", rangeRef, err)
	}
	if len(parts) == 1 {
		return left, top, left, top, nil
	}
	right, bottom, err = excelize.CellNameToCoordinates(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", rangeRef, err)
	}
	if right < left {
		left, right = right, left
	}
	if bottom < top {
		top, bottom = bottom, top
	}
	return left, top, right, bottom, nil
}
