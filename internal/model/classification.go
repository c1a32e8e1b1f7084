package model

// Tag is the special kind assigned to a row by the classifier.
type Tag string

const (
	TagOpeningBalance      Tag = "opening-balance"
	TagCardBillPayment     Tag = "card-bill-payment"
	TagBoletoPayment       Tag = "boleto-payment"
	TagAtmWithdrawal       Tag = "atm-withdrawal"
	TagCardCategoryExpense Tag = "card-category-expense"
	TagBalanceAdjustment   Tag = "balance-adjustment"
	TagUnclassified        Tag = "unclassified"
)

// Classification carries a row together with its tag.
type Classification struct {
	Row Row
	Tag Tag
}

// MatchConfidence records how a transfer pair was found.
type MatchConfidence string

const (
	SameCategory  MatchConfidence = "same-category"
	CrossCategory MatchConfidence = "cross-category"
)

// TransferPair is a debit and a credit leg of one internal transfer.
type TransferPair struct {
	Debit      Row
	Credit     Row
	Confidence MatchConfidence
	SkewDays   int
}

// OrphanReason explains why a row was not paired.
type OrphanReason string

const (
	OrphanOpeningBalance OrphanReason = "opening-balance"
	OrphanAdjustment     OrphanReason = "adjustment"
	OrphanNoPairDebit    OrphanReason = "no-pair-debit"
	OrphanNoPairCredit   OrphanReason = "no-pair-credit"
)

// Orphan is a row that is posted one-sided against an equity account.
type Orphan struct {
	Row    Row
	Reason OrphanReason
}

// CardRegime names the rule that resolved a card payment.
type CardRegime string

const (
	RegimeFixed   CardRegime = "fixed"
	RegimeLegacy  CardRegime = "legacy"
	RegimeKeyword CardRegime = "keyword"
	RegimeRanked  CardRegime = "ranked"
	RegimeNone    CardRegime = ""
)

// CardResolution is the outcome of resolving one card-bill payment.
type CardResolution struct {
	Row    Row
	Card   string // liability account id; empty when unresolved
	Regime CardRegime
	Reason string // why the row is unresolved
}

// Resolved reports whether a card was assigned.
func (c CardResolution) Resolved() bool {
	return c.Card != ""
}
