package model

// AccountKind classifies a source account in the registry.
type AccountKind string

const (
	AccountKindAsset     AccountKind = "asset"
	AccountKindLiability AccountKind = "liability"
)

// Valid reports whether k is one of the known kinds.
func (k AccountKind) Valid() bool {
	return k == AccountKindAsset || k == AccountKindLiability
}

// Account represents a row in accounts.csv.
type Account struct {
	ID   string      // identifier used by the export, e.g. "BbCorrente"
	Kind AccountKind // asset or liability
	Path string      // ledger path; empty means derived from Kind
}
