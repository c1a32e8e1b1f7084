package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pla-ledger/pla/internal/model"
)

// XLSXParser parses Organizze .xlsx exports. Only the first sheet is read.
type XLSXParser struct{}

// Format returns the file extension handled.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads the first sheet with raw cell values, so dates arrive as
// serial numbers and amounts without locale formatting.
func (p *XLSXParser) Parse(r io.ReadSeeker, account string) ([]model.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnknownFormat)
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return rowsFromTable(records, account)
}
