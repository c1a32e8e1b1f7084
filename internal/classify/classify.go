// Package classify tags budgeting-export rows with the special kind that
// decides where they are posted.
package classify

import (
	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/accounts"
	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/textnorm"
)

// Config holds the category sets and keyword lists used by the predicates.
// All comparisons are accent- and case-insensitive.
type Config struct {
	BillCategories        []string `yaml:"bill_categories"`
	BillKeywords          []string `yaml:"bill_keywords"`
	AtmKeywords           []string `yaml:"atm_keywords"`
	BoletoKeywords        []string `yaml:"boleto_keywords"`
	CardExpenseCategories []string `yaml:"card_expense_categories"`
	AdjustmentKeywords    []string `yaml:"adjustment_keywords"` // all must appear
	OpeningKeywords       []string `yaml:"opening_keywords"`
}

// DefaultConfig returns the keyword lists of the Organizze exports.
func DefaultConfig() Config {
	return Config{
		BillCategories:        []string{"outros", "pagamento de fatura"},
		BillKeywords:          []string{"pagamento", "fatura", "invoice", "payment"},
		AtmKeywords:           []string{"saque"},
		BoletoKeywords:        []string{"boleto", "pagamento de título"},
		CardExpenseCategories: []string{"outros"},
		AdjustmentKeywords:    []string{"ajuste", "saldo"},
		OpeningKeywords:       []string{"saldo inicial"},
	}
}

// Classifier assigns exactly one tag to each row.
type Classifier struct {
	cfg      Config
	registry *accounts.Registry
	log      zerolog.Logger
}

// New creates a Classifier.
func New(cfg Config, registry *accounts.Registry, log zerolog.Logger) *Classifier {
	return &Classifier{cfg: cfg, registry: registry, log: log}
}

type predicate struct {
	tag   model.Tag
	match func(model.Row) bool
}

// rules lists the predicates in precedence order; the first match wins.
func (c *Classifier) rules() []predicate {
	return []predicate{
		{model.TagOpeningBalance, c.isOpeningBalance},
		{model.TagCardBillPayment, c.isCardBillPayment},
		{model.TagBoletoPayment, c.isBoletoPayment},
		{model.TagAtmWithdrawal, c.isAtmWithdrawal},
		{model.TagCardCategoryExpense, c.isCardCategoryExpense},
		{model.TagBalanceAdjustment, c.isBalanceAdjustment},
	}
}

// Classify returns the tag for a single row.
func (c *Classifier) Classify(r model.Row) model.Tag {
	for _, p := range c.rules() {
		if p.match(r) {
			return p.tag
		}
	}
	return model.TagUnclassified
}

// ClassifyAll tags every row, preserving input order.
func (c *Classifier) ClassifyAll(rows []model.Row) []model.Classification {
	out := make([]model.Classification, 0, len(rows))
	counts := make(map[model.Tag]int)
	for _, r := range rows {
		tag := c.Classify(r)
		counts[tag]++
		c.log.Debug().
			Int("row", r.Index).
			Str("account", r.Account).
			Str("description", r.Description).
			Str("tag", string(tag)).
			Msg("classified row")
		out = append(out, model.Classification{Row: r, Tag: tag})
	}

	ev := c.log.Info().Int("rows", len(rows))
	for tag, n := range counts {
		ev = ev.Int(string(tag), n)
	}
	ev.Msg("classification done")
	return out
}

func (c *Classifier) isOpeningBalance(r model.Row) bool {
	return textnorm.ContainsAny(r.Description, c.cfg.OpeningKeywords...)
}

func (c *Classifier) isCardBillPayment(r model.Row) bool {
	return r.Direction() == model.Debit &&
		inSet(r.Category, c.cfg.BillCategories) &&
		textnorm.ContainsAny(r.Description, c.cfg.BillKeywords...) &&
		c.registry.IsAsset(r.Account)
}

func (c *Classifier) isBoletoPayment(r model.Row) bool {
	return r.Direction() == model.Debit && textnorm.ContainsAny(r.Description, c.cfg.BoletoKeywords...)
}

func (c *Classifier) isAtmWithdrawal(r model.Row) bool {
	return r.Direction() == model.Debit && textnorm.ContainsAny(r.Description, c.cfg.AtmKeywords...)
}

func (c *Classifier) isCardCategoryExpense(r model.Row) bool {
	return r.Direction() == model.Debit &&
		c.registry.IsLiability(r.Account) &&
		inSet(r.Category, c.cfg.CardExpenseCategories)
}

func (c *Classifier) isBalanceAdjustment(r model.Row) bool {
	return textnorm.ContainsAll(r.Description, c.cfg.AdjustmentKeywords...)
}

func inSet(s string, set []string) bool {
	for _, v := range set {
		if textnorm.EqualFold(s, v) {
			return true
		}
	}
	return false
}
