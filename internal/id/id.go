package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pla-ledger/pla/internal/model"
)

// Length is the number of hex characters kept from the digest.
const Length = 16

const dateLayout = "2006-01-02"

// Hash returns the first 16 hex chars of SHA-256 over the joined parts.
func Hash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:Length]
}

// ForRow returns the origin id of a budgeting-export row. Identical date,
// description, amount and account always give the same id.
func ForRow(r model.Row) string {
	return Hash(
		r.Date.Format(dateLayout),
		strings.TrimSpace(r.Description),
		r.Amount.StringFixed(2),
		r.Account,
	)
}

// ForPair returns the origin id of a transfer posting built from two legs.
func ForPair(debit, credit model.Row) string {
	return Hash(ForRow(debit), ForRow(credit))
}

// ForStatement returns the FITID, or "date_amount_name" when the bank left
// it empty.
func ForStatement(t model.StatementTransaction) string {
	if fitid := strings.TrimSpace(t.FITID); fitid != "" {
		return fitid
	}
	return t.Date.Format(dateLayout) + "_" + t.Amount.StringFixed(2) + "_" + strings.TrimSpace(t.Payee)
}
