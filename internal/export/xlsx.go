package export

import (
	"fmt"

	"jira-cfd/internal/cfd"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the CFD table.
const SheetName = "CFD"

// WriteXLSX saves the table as a single-sheet workbook at path.
func WriteXLSX(path string, table cfd.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, toAny(header(table))); err != nil {
		return err
	}

	for i, date := range table.Dates {
		row := make([]any, 0, len(table.Statuses)+1)
		row = append(row, date)
		for _, n := range table.Counts[i] {
			row = append(row, n)
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
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
