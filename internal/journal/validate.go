package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pla-ledger/pla/internal/model"
)

// Invariant names checked by ValidatePostings.
const (
	InvariantBalanced = "balanced"
	InvariantAccounts = "accounts"
	InvariantDecimals = "decimals"
	InvariantOrigin   = "origin"
	InvariantFlag     = "flag"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant string
	Index     int
	Origin    string
	Detail    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [posting %d %s]: %s", e.Invariant, e.Index, e.Origin, e.Detail)
}

var hundred = decimal.NewFromInt(100)

// ValidatePostings checks every posting before it is written: two lines
// summing to zero, named accounts, at most 2 decimal places, a valid flag
// and an origin id.
func ValidatePostings(postings []model.Posting) []ValidationError {
	var errs []ValidationError
	for i, p := range postings {
		origin := p.OriginID()
		fail := func(inv, detail string) {
			errs = append(errs, ValidationError{Invariant: inv, Index: i, Origin: origin, Detail: detail})
		}

		if !p.Balanced() {
			fail(InvariantBalanced, fmt.Sprintf("%s + %s != 0", p.Lines[0].Amount.StringFixed(2), p.Lines[1].Amount.StringFixed(2)))
		}

		for _, l := range p.Lines {
			if l.Account == "" {
				fail(InvariantAccounts, "empty account")
			}
			if scaled := l.Amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
				fail(InvariantDecimals, fmt.Sprintf("amount %s has more than 2 decimal places", l.Amount))
			}
		}

		if p.Flag != model.FlagSettled && p.Flag != model.FlagProvisional {
			fail(InvariantFlag, fmt.Sprintf("unknown flag %q", p.Flag))
		}

		if origin == "" {
			fail(InvariantOrigin, "missing origem_id")
		}
	}
	return errs
}
