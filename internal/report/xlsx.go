// Package report writes aggregated deaths and cleaned records to workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	"github.com/KaramelBytes/causeboard/internal/mortality"
)

const (
	sheetDeaths  = "Deaths"
	sheetRecords = "Records"
)

// Workbook holds the sheets of an export.
type Workbook struct {
	Title string
	Rows  []aggregate.Row
	Keys  []aggregate.Key
	// Table, when set, adds a sheet with the cleaned source records.
	Table *mortality.Table

	recordsOnly bool
}

// Records returns a workbook holding only the cleaned records of t, laid out
// like the CSV export so it loads back through mortality.Load.
func Records(t *mortality.Table) Workbook {
	return Workbook{Table: t, recordsOnly: true}
}

// Build creates the excelize file. The caller must Close it.
func (wb Workbook) Build() (*excelize.File, error) {
	if wb.recordsOnly && wb.Table == nil {
		return nil, fmt.Errorf("records workbook: no table")
	}
	f := excelize.NewFile()
	first := sheetDeaths
	if wb.recordsOnly {
		first = sheetRecords
	}
	if err := f.SetSheetName("Sheet1", first); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if !wb.recordsOnly {
		if err := writeDeaths(f, wb); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if wb.Table != nil {
		if err := writeRecords(f, wb.Table); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write streams the workbook as .xlsx into w.
func (wb Workbook) Write(w io.Writer) error {
	f, err := wb.Build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook to path.
func (wb Workbook) Save(path string) error {
	f, err := wb.Build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeDeaths(f *excelize.File, wb Workbook) error {
	row := 1
	if wb.Title != "" {
		if err := f.SetCellValue(sheetDeaths, "A1", wb.Title); err != nil {
			return fmt.Errorf("set title: %w", err)
		}
		row = 3
	}
	header := aggregate.Columns(wb.Keys)
	if err := setRow(f, sheetDeaths, row, toAny(header)); err != nil {
		return err
	}
	for i := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetDeaths, col, col, 24); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}
	for _, r := range wb.Rows {
		row++
		if err := setRow(f, sheetDeaths, row, rowValues(r, wb.Keys)); err != nil {
			return err
		}
	}
	row++
	total := make([]any, len(header))
	total[0] = "Total"
	total[len(total)-1] = aggregate.Total(wb.Rows)
	return setRow(f, sheetDeaths, row, total)
}

func writeRecords(f *excelize.File, t *mortality.Table) error {
	idx, err := f.GetSheetIndex(sheetRecords)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheetRecords); err != nil {
			return fmt.Errorf("new sheet: %w", err)
		}
	}
	if err := setRow(f, sheetRecords, 1, toAny(t.Header())); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := setRow(f, sheetRecords, i+2, toAny(t.Row(i))); err != nil {
			return err
		}
	}
	return nil
}

// rowValues keeps numbers numeric so spreadsheets can sum them.
func rowValues(r aggregate.Row, keys []aggregate.Key) []any {
	if len(keys) == 0 {
		keys = []aggregate.Key{aggregate.KeyCause}
	}
	vals := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		switch k {
		case aggregate.KeyCause:
			vals = append(vals, r.Cause)
		case aggregate.KeyYear:
			vals = append(vals, r.Year)
		case aggregate.KeyState:
			vals = append(vals, r.State)
		}
	}
	return append(vals, r.Deaths)
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
