package importer

import (
	"fmt"
	"io"

	"github.com/shakinm/xlsReader/xls"

	"github.com/pla-ledger/pla/internal/model"
)

// XLSParser parses legacy .xls exports. Only the first sheet is read.
type XLSParser struct{}

// Format returns the file extension handled.
func (p *XLSParser) Format() string { return "xls" }

// Parse reads the first sheet of a BIFF workbook.
func (p *XLSParser) Parse(r io.ReadSeeker, account string) ([]model.Row, error) {
	wb, err := xls.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}
	if len(wb.GetSheets()) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnknownFormat)
	}
	sheet, err := wb.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("reading first sheet: %w", err)
	}

	var records [][]string
	for _, row := range sheet.GetRows() {
		var rec []string
		for _, c := range row.GetCols() {
			rec = append(rec, c.GetString())
		}
		records = append(records, rec)
	}
	return rowsFromTable(records, account)
}
