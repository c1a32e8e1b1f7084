package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/pla-ledger/pla/internal/model"
)

// CSVParser parses .csv exports. The delimiter is sniffed from the first
// line and non-UTF-8 files are decoded as ISO-8859-1.
type CSVParser struct{}

// Format returns the file extension handled.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a comma or semicolon separated export.
func (p *CSVParser) Parse(r io.ReadSeeker, account string) ([]model.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	br := bufio.NewReader(src)

	first, err := br.Peek(min(len(data), 4096))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(string(first))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rowsFromTable(records, account)
}

func sniffDelimiter(head string) rune {
	line, _, _ := strings.Cut(head, "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
