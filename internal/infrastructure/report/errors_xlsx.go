package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Errors"

// WriteImportErrors renders rejected rows as a spreadsheet: the CSV line,
// the joined field errors, then one column per value the rows carried.
func WriteImportErrors(w io.Writer, errs []domain.ImportError) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	dataColumns := collectDataColumns(errs)
	headers := append([]string{"row", "errors"}, dataColumns...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, e := range errs {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheetName, cell, value)
		}

		set(1, e.Row)
		set(2, joinFieldErrors(e.Errors))
		for j, key := range dataColumns {
			set(j+3, e.Data[key])
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func collectDataColumns(errs []domain.ImportError) []string {
	seen := make(map[string]struct{})
	for _, e := range errs {
		for key := range e.Data {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

func joinFieldErrors(errs []domain.FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}
