package sheet

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

func decodeXLSX(data []byte) (*Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	grid := &Grid{}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		grid.Date1904 = *props.Date1904
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return grid, nil
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	grid.Rows = make([][]Cell, len(rows))
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, value := range row {
			if value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(name, axis)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell type at %s: %w", axis, err)
			}
			cells[c] = Cell{Value: value, Kind: kindOf(typ, value)}
		}
		grid.Rows[r] = cells
	}
	return grid, nil
}

// kindOf classifies a raw cell. Numeric cells carry no type attribute in
// the sheet XML, so untyped values that parse as numbers are numbers.
func kindOf(typ excelize.CellType, value string) Kind {
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return Number
		}
	}
	return Text
}
