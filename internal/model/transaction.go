package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is derived from the sign of a row amount.
type Direction string

const (
	Debit  Direction = "D"
	Credit Direction = "R"
)

// RowStatus is the settlement state reported by the export.
type RowStatus string

const (
	StatusPaid    RowStatus = "paid"
	StatusPending RowStatus = "pending"
)

// Row is one transaction line of a budgeting export.
type Row struct {
	Index       int // position after consolidation, used for deterministic ordering
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Account     string          // source account identifier
	Category    string
	Status      RowStatus
}

// Direction recomputes the direction from the amount sign.
func (r Row) Direction() Direction {
	if r.Amount.IsNegative() {
		return Debit
	}
	return Credit
}

// Abs returns the unsigned amount.
func (r Row) Abs() decimal.Decimal {
	return r.Amount.Abs()
}

// StatementTransaction is one transaction of a bank OFX statement.
type StatementTransaction struct {
	FITID  string
	Date   time.Time
	Amount decimal.Decimal
	Payee  string
	Memo   string
}
