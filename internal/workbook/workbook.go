// Package workbook adapts spreadsheet files to plain sheet grids and back.
package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned by Rows for a name the workbook does not have.
var ErrSheetNotFound = errors.New("workbook: sheet not found")

// Grid is a sheet as rows of cell text. Rows may be ragged.
type Grid [][]string

// Cell returns the text at (row, col) or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Sheet is one named grid, used when encoding.
type Sheet struct {
	Name string
	Rows Grid
}

// Workbook is a fully decoded set of sheets in their original order.
type Workbook struct {
	names  []string
	sheets map[string]Grid
}

// New builds a workbook from already-decoded sheets.
func New(sheets ...Sheet) *Workbook {
	wb := &Workbook{sheets: make(map[string]Grid, len(sheets))}
	for _, s := range sheets {
		if _, dup := wb.sheets[s.Name]; !dup {
			wb.names = append(wb.names, s.Name)
		}
		wb.sheets[s.Name] = s.Rows
	}
	return wb
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// Rows returns the grid for name.
func (w *Workbook) Rows(name string) ([][]string, error) {
	g, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return g, nil
}

// Read decodes an xlsx stream. Every sheet is read up front so a broken
// workbook fails here and not halfway through ingestion.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook: open: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("workbook: read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return New(sheets...), nil
}

// ReadBytes is Read over an in-memory file.
func ReadBytes(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, errors.New("workbook: empty file")
	}
	return Read(bytes.NewReader(data))
}

// Encode writes sheets into a new xlsx file. The first sheet replaces the
// default "Sheet1".
func Encode(sheets ...Sheet) (*bytes.Buffer, error) {
	if len(sheets) == 0 {
		return nil, errors.New("workbook: nothing to encode")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, fmt.Errorf("workbook: rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("workbook: add sheet %q: %w", s.Name, err)
		}
		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("workbook: write %s!%s: %w", s.Name, cell, err)
			}
		}
	}
	return f.WriteToBuffer()
}
