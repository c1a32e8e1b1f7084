package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flag values used on postings.
const (
	FlagSettled     = "*"
	FlagProvisional = "!"
)

// FlagFor maps a row status to a posting flag.
func FlagFor(status RowStatus) string {
	if status == StatusPending {
		return FlagProvisional
	}
	return FlagSettled
}

// Line is one account/amount line of a posting.
type Line struct {
	Account string
	Amount  decimal.Decimal
}

// Meta is an ordered metadata entry.
type Meta struct {
	Key   string
	Value string
}

// Posting is a balanced two-line ledger transaction.
type Posting struct {
	Date        time.Time
	Flag        string
	Description string
	Lines       [2]Line
	Meta        []Meta
}

// OriginID returns the origem_id metadata value, or "".
func (p Posting) OriginID() string {
	for _, m := range p.Meta {
		if m.Key == MetaOrigin {
			return m.Value
		}
	}
	return ""
}

// Balanced reports whether the two lines are exact negatives.
func (p Posting) Balanced() bool {
	return p.Lines[0].Amount.Add(p.Lines[1].Amount).IsZero()
}

// Metadata keys written on postings.
const (
	MetaOrigin     = "origem_id"
	MetaOrphan     = "orfao"
	MetaConfidence = "confianca"
	MetaSkew       = "dias_diferenca"
	MetaTransfer   = "transferencia"
	MetaRegime     = "regra_cartao"
)
