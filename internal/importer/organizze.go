package importer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/textnorm"
)

// Folded header names of an Organizze export.
const (
	headerDate        = "data"
	headerDescription = "descricao"
	headerCategory    = "categoria"
	headerAmount      = "valor"
	headerStatus      = "situacao"
	headerAccount     = "conta"
)

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

type columns struct {
	date, desc, category, amount, status, account int
}

// findHeader locates the first row naming both Data and Valor.
func findHeader(records [][]string) (int, columns, error) {
	for i, rec := range records {
		cols := columns{-1, -1, -1, -1, -1, -1}
		for j, h := range rec {
			switch textnorm.Fold(strings.TrimPrefix(h, "\ufeff")) {
			case headerDate:
				cols.date = j
			case headerDescription:
				cols.desc = j
			case headerCategory:
				cols.category = j
			case headerAmount:
				cols.amount = j
			case headerStatus:
				cols.status = j
			case headerAccount:
				cols.account = j
			}
		}
		if cols.date >= 0 && cols.amount >= 0 {
			return i, cols, nil
		}
	}
	return 0, columns{}, fmt.Errorf("%w: no header with Data and Valor columns", ErrUnknownFormat)
}

// rowsFromTable converts spreadsheet cells to rows. Blank lines are skipped;
// a line without a valid date or amount fails the whole table.
func rowsFromTable(records [][]string, account string) ([]model.Row, error) {
	hdr, cols, err := findHeader(records)
	if err != nil {
		return nil, err
	}

	var rows []model.Row
	for i, rec := range records[hdr+1:] {
		if blank(rec) {
			continue
		}
		line := hdr + i + 2

		date, err := parseDate(cell(rec, cols.date))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %v", line, ErrMalformedRow, err)
		}
		amount, err := parseAmount(cell(rec, cols.amount))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %v", line, ErrMalformedRow, err)
		}

		acct := strings.TrimSpace(cell(rec, cols.account))
		if acct == "" {
			acct = account
		}
		if acct == "" {
			return nil, fmt.Errorf("row %d: %w: no source account", line, ErrMalformedRow)
		}

		rows = append(rows, model.Row{
			Date:        date,
			Description: strings.TrimSpace(cell(rec, cols.desc)),
			Amount:      amount,
			Account:     acct,
			Category:    strings.TrimSpace(cell(rec, cols.category)),
			Status:      parseStatus(cell(rec, cols.status)),
		})
	}
	return rows, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts dd/mm/yyyy, ISO dates and Excel serial numbers.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date serial %q: %w", s, err)
		}
		return dateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseAmount accepts "1.234,56", "-1234.56", "R$ 10,00" and raw spreadsheet
// numbers. The right-most separator is the decimal one. Sub-cent amounts are
// rejected rather than rounded.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("R$", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("missing amount")
	}
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return d, nil
}

// parseStatus maps Situação to a status. Anything not clearly pending is
// paid.
func parseStatus(s string) model.RowStatus {
	f := textnorm.Fold(s)
	switch {
	case strings.Contains(f, "nao"), strings.Contains(f, "pend"), strings.Contains(f, "agend"),
		f == "a pagar", f == "a receber":
		return model.StatusPending
	default:
		return model.StatusPaid
	}
}

// AccountFromFilename derives the source account from an export name:
// "bb-corrente_2024.xls" -> "BbCorrente".
func AccountFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.SplitN(stem, "_", 2)[0]
	name := textnorm.SanitizeName(strings.ReplaceAll(stem, "-", " "))
	if name == textnorm.UnknownName {
		return ""
	}
	return name
}

// Consolidate concatenates exports and stable-sorts them by date, then
// amount. Rows are renumbered in the result order.
func Consolidate(exports ...[]model.Row) []model.Row {
	var all []model.Row
	for _, e := range exports {
		all = append(all, e...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].Amount.LessThan(all[j].Amount)
	})
	for i := range all {
		all[i].Index = i
	}
	return all
}
