package journal

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pla-ledger/pla/internal/id"
	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/textnorm"
)

// Routing names the fixed ledger accounts special rows are posted to.
type Routing struct {
	ExpensesRoot     string `yaml:"expenses_root"`
	IncomeRoot       string `yaml:"income_root"`
	Atm              string `yaml:"atm"`
	Boleto           string `yaml:"boleto"`
	CardCategory     string `yaml:"card_category"`
	OpeningBalance   string `yaml:"opening_balance"`
	Adjustment       string `yaml:"adjustment"`
	PendingTransfer  string `yaml:"pending_transfer"`
	ReceivedTransfer string `yaml:"received_transfer"`
	NeedsReview      string `yaml:"needs_review"`
}

// DefaultRouting returns the Brazilian account names of a personal ledger.
func DefaultRouting() Routing {
	return Routing{
		ExpensesRoot:     "Expenses",
		IncomeRoot:       "Income",
		Atm:              "Expenses:SaquesATM",
		Boleto:           "Expenses:Boletos",
		CardCategory:     "Expenses:OutrosCartao",
		OpeningBalance:   "Equity:SaldoInicial",
		Adjustment:       "Equity:Ajustes",
		PendingTransfer:  "Equity:TransferenciasPendentes",
		ReceivedTransfer: "Income:TransferenciasRecebidas",
		NeedsReview:      "Expenses:Ajustes",
	}
}

// PathResolver maps a source account identifier to its ledger path.
type PathResolver interface {
	Path(id string) string
}

// Builder turns classified rows, pairs and orphans into balanced postings.
type Builder struct {
	routing Routing
	paths   PathResolver
}

// NewBuilder creates a Builder.
func NewBuilder(routing Routing, paths PathResolver) *Builder {
	return &Builder{routing: routing, paths: paths}
}

// CategoryAccount returns root:SanitizedCategory.
func CategoryAccount(root, category string) string {
	return root + ":" + textnorm.SanitizeName(category)
}

// IsPlaceholderCategory reports whether the category sanitizes to the
// fallback name, which leaves the row pending review.
func IsPlaceholderCategory(category string) bool {
	return textnorm.SanitizeName(category) == textnorm.UnknownName
}

// Regular posts an unclassified row to Expenses:{category} or
// Income:{category} depending on its direction.
func (b *Builder) Regular(r model.Row) model.Posting {
	src := b.paths.Path(r.Account)
	if r.Direction() == model.Debit {
		return b.posting(r, CategoryAccount(b.routing.ExpensesRoot, r.Category), src, r.Abs())
	}
	return b.posting(r, src, CategoryAccount(b.routing.IncomeRoot, r.Category), r.Abs())
}

// Special posts rows tagged AtmWithdrawal, BoletoPayment or
// CardCategoryExpense. ok is false for any other tag.
func (b *Builder) Special(c model.Classification) (model.Posting, bool) {
	var target string
	switch c.Tag {
	case model.TagAtmWithdrawal:
		target = b.routing.Atm
	case model.TagBoletoPayment:
		target = b.routing.Boleto
	case model.TagCardCategoryExpense:
		target = b.routing.CardCategory
	default:
		return model.Posting{}, false
	}
	return b.posting(c.Row, target, b.paths.Path(c.Row.Account), c.Row.Abs()), true
}

// CardPayment posts a resolved bill payment against the card it pays.
func (b *Builder) CardPayment(res model.CardResolution) model.Posting {
	p := b.posting(res.Row, b.paths.Path(res.Card), b.paths.Path(res.Row.Account), res.Row.Abs())
	p.Meta = append(p.Meta, model.Meta{Key: model.MetaRegime, Value: string(res.Regime)})
	return p
}

// Pair posts a transfer: the credit leg's account receives, the debit leg's
// account pays.
func (b *Builder) Pair(tp model.TransferPair) model.Posting {
	amt := tp.Debit.Abs().Round(2)
	flag := model.FlagFor(tp.Debit.Status)
	if tp.Credit.Status == model.StatusPending {
		flag = model.FlagProvisional
	}
	p := model.Posting{
		Date:        tp.Debit.Date,
		Flag:        flag,
		Description: textnorm.SanitizeDescription(tp.Debit.Description),
		Lines: [2]model.Line{
			{Account: b.paths.Path(tp.Credit.Account), Amount: amt},
			{Account: b.paths.Path(tp.Debit.Account), Amount: amt.Neg()},
		},
		Meta: []model.Meta{{Key: model.MetaOrigin, Value: id.ForPair(tp.Debit, tp.Credit)}},
	}
	if tp.Confidence == model.CrossCategory {
		p.Meta = append(p.Meta, model.Meta{Key: model.MetaConfidence, Value: string(tp.Confidence)})
	}
	if tp.SkewDays != 0 {
		p.Meta = append(p.Meta, model.Meta{Key: model.MetaSkew, Value: strconv.Itoa(tp.SkewDays)})
	}
	return p
}

// Orphan posts a row one-sided against an equity account.
func (b *Builder) Orphan(o model.Orphan) model.Posting {
	r := o.Row
	src := b.paths.Path(r.Account)
	var p model.Posting
	switch o.Reason {
	case model.OrphanOpeningBalance:
		// Sign kept: a negative opening balance stays negative on the source.
		p = b.posting(r, src, b.routing.OpeningBalance, r.Amount)
	case model.OrphanAdjustment:
		if r.Direction() == model.Debit {
			p = b.posting(r, src, b.routing.Adjustment, r.Abs())
		} else {
			p = b.posting(r, b.routing.Adjustment, src, r.Abs())
		}
	default:
		p = b.posting(r, b.routing.PendingTransfer, src, r.Amount.Neg())
	}
	p.Meta = append(p.Meta, model.Meta{Key: model.MetaOrphan, Value: string(o.Reason)})
	return p
}

// Received posts a transfer from outside the tracked accounts as income.
func (b *Builder) Received(r model.Row) model.Posting {
	return b.posting(r, b.paths.Path(r.Account), b.routing.ReceivedTransfer, r.Abs())
}

// Statement posts one OFX transaction: the bank account gets the signed
// amount and target the negation.
func (b *Builder) Statement(tx model.StatementTransaction, bankAccount, target string, selfTransfer bool) model.Posting {
	desc := strings.TrimSpace(tx.Memo)
	if desc == "" {
		desc = tx.Payee
	}
	p := model.Posting{
		Date:        tx.Date,
		Flag:        model.FlagSettled,
		Description: textnorm.SanitizeDescription(desc),
		Lines: [2]model.Line{
			{Account: bankAccount, Amount: tx.Amount.Round(2)},
			{Account: target, Amount: tx.Amount.Round(2).Neg()},
		},
		Meta: []model.Meta{{Key: model.MetaOrigin, Value: id.ForStatement(tx)}},
	}
	if selfTransfer {
		p.Meta = append(p.Meta, model.Meta{Key: model.MetaTransfer, Value: "true"})
	}
	return p
}

// posting builds a two-line posting where first receives amount and second
// its negation.
func (b *Builder) posting(r model.Row, first, second string, amount decimal.Decimal) model.Posting {
	amount = amount.Round(2)
	return model.Posting{
		Date:        r.Date,
		Flag:        model.FlagFor(r.Status),
		Description: textnorm.SanitizeDescription(r.Description),
		Lines: [2]model.Line{
			{Account: first, Amount: amount},
			{Account: second, Amount: amount.Neg()},
		},
		Meta: []model.Meta{{Key: model.MetaOrigin, Value: id.ForRow(r)}},
	}
}
