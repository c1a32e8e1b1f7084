// Package cardpay decides which credit card a bill-payment debit pays.
package cardpay

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/textnorm"
)

const dateLayout = "2006-01-02"

// Reasons attached to unresolved payments.
const (
	ReasonNoRule       = "no card rule for source account"
	ReasonLonePayment  = "only payment in month"
	ReasonMiddleRanked = "middle-ranked payment in month"
	ReasonTiedAmount   = "tied amount in month"
)

// Config is the card-payment rule table.
type Config struct {
	Fixed  map[string]string `yaml:"fixed"` // source account -> card
	Shared []SharedAccount   `yaml:"shared,omitempty"`
}

// SharedAccount is a source account whose single payment stream pays two
// cards. KeywordFrom and RankedFrom are the two regime thresholds.
type SharedAccount struct {
	Account     string `yaml:"account"`
	LegacyCard  string `yaml:"legacy_card"`
	LoyaltyCard string `yaml:"loyalty_card"`
	Keyword     string `yaml:"keyword"`
	KeywordFrom string `yaml:"keyword_from"` // YYYY-MM-DD
	RankedFrom  string `yaml:"ranked_from"`  // YYYY-MM-DD
}

// DefaultConfig returns the card table of the default account registry.
func DefaultConfig() Config {
	return Config{
		Fixed: map[string]string{
			"BancoInter":      "CartaoDeCreditoInter",
			"C6Bank":          "MastercardC6Bank",
			"ItauPersonalite": "LatamPass",
		},
		Shared: []SharedAccount{{
			Account:     "BbCorrente",
			LegacyCard:  "Saraiva",
			LoyaltyCard: "SmilesBbPlatinum",
			Keyword:     "smiles",
			KeywordFrom: "2023-04-10",
			RankedFrom:  "2025-02-01",
		}},
	}
}

type shared struct {
	SharedAccount
	t1, t2 time.Time
}

// Resolver assigns a liability account to each card-bill payment.
type Resolver struct {
	fixed  map[string]string
	shared map[string]shared
	log    zerolog.Logger
}

// New validates the config and creates a Resolver.
func New(cfg Config, log zerolog.Logger) (*Resolver, error) {
	r := &Resolver{
		fixed:  make(map[string]string, len(cfg.Fixed)),
		shared: make(map[string]shared, len(cfg.Shared)),
		log:    log,
	}
	for src, card := range cfg.Fixed {
		r.fixed[src] = card
	}
	for _, s := range cfg.Shared {
		if s.Account == "" || s.LegacyCard == "" || s.LoyaltyCard == "" {
			return nil, fmt.Errorf("shared card account %q: account, legacy_card and loyalty_card are required", s.Account)
		}
		t1, err := time.Parse(dateLayout, s.KeywordFrom)
		if err != nil {
			return nil, fmt.Errorf("shared card account %s: keyword_from: %w", s.Account, err)
		}
		t2, err := time.Parse(dateLayout, s.RankedFrom)
		if err != nil {
			return nil, fmt.Errorf("shared card account %s: ranked_from: %w", s.Account, err)
		}
		if !t1.Before(t2) {
			return nil, fmt.Errorf("shared card account %s: keyword_from must be before ranked_from", s.Account)
		}
		if _, dup := r.shared[s.Account]; dup {
			return nil, fmt.Errorf("shared card account %s listed twice", s.Account)
		}
		r.shared[s.Account] = shared{SharedAccount: s, t1: t1, t2: t2}
	}
	return r, nil
}

type monthKey struct {
	account string
	year    int
	month   time.Month
}

// Resolve returns one resolution per CardBillPayment row, in input order.
// Other tags are ignored.
func (r *Resolver) Resolve(rows []model.Classification) []model.CardResolution {
	var out []model.CardResolution
	ranked := make(map[monthKey][]int) // positions in out

	for _, c := range rows {
		if c.Tag != model.TagCardBillPayment {
			continue
		}
		res := r.resolveOne(c.Row)
		if res.Regime == model.RegimeRanked {
			d := onlyDate(c.Row.Date)
			k := monthKey{account: c.Row.Account, year: d.Year(), month: d.Month()}
			ranked[k] = append(ranked[k], len(out))
		}
		out = append(out, res)
	}

	for k, positions := range ranked {
		r.rankMonth(r.shared[k.account], out, positions)
	}

	resolved := 0
	for _, res := range out {
		if res.Resolved() {
			resolved++
			continue
		}
		r.log.Warn().
			Int("row", res.Row.Index).
			Str("account", res.Row.Account).
			Str("date", res.Row.Date.Format(dateLayout)).
			Str("amount", res.Row.Amount.StringFixed(2)).
			Str("reason", res.Reason).
			Msg("unresolved card payment")
	}
	r.log.Info().Int("payments", len(out)).Int("resolved", resolved).Msg("card payment resolution done")
	return out
}

func (r *Resolver) resolveOne(row model.Row) model.CardResolution {
	if card, ok := r.fixed[row.Account]; ok {
		return model.CardResolution{Row: row, Card: card, Regime: model.RegimeFixed}
	}
	s, ok := r.shared[row.Account]
	if !ok {
		return model.CardResolution{Row: row, Reason: ReasonNoRule}
	}
	d := onlyDate(row.Date)
	switch {
	case d.Before(s.t1):
		return model.CardResolution{Row: row, Card: s.LegacyCard, Regime: model.RegimeLegacy}
	case d.Before(s.t2):
		card := s.LegacyCard
		if textnorm.ContainsAny(row.Description, s.Keyword) {
			card = s.LoyaltyCard
		}
		return model.CardResolution{Row: row, Card: card, Regime: model.RegimeKeyword}
	default:
		// Filled in by rankMonth.
		return model.CardResolution{Row: row, Regime: model.RegimeRanked}
	}
}

// rankMonth resolves one month of ranked payments: the unique smallest goes
// to the legacy card, the unique largest to the loyalty card, the rest stay
// unresolved.
func (r *Resolver) rankMonth(s shared, out []model.CardResolution, positions []int) {
	if len(positions) < 2 {
		for _, p := range positions {
			out[p].Reason = ReasonLonePayment
		}
		return
	}

	sorted := append([]int(nil), positions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return out[sorted[i]].Row.Abs().LessThan(out[sorted[j]].Row.Abs())
	})

	n := len(sorted)
	minPos, maxPos := sorted[0], sorted[n-1]
	minUnique := out[minPos].Row.Abs().LessThan(out[sorted[1]].Row.Abs())
	maxUnique := out[maxPos].Row.Abs().GreaterThan(out[sorted[n-2]].Row.Abs())

	for _, p := range positions {
		switch {
		case p == minPos && minUnique:
			out[p].Card = s.LegacyCard
		case p == maxPos && maxUnique:
			out[p].Card = s.LoyaltyCard
		case out[p].Row.Abs().Equal(out[minPos].Row.Abs()) || out[p].Row.Abs().Equal(out[maxPos].Row.Abs()):
			out[p].Reason = ReasonTiedAmount
		default:
			out[p].Reason = ReasonMiddleRanked
		}
	}
}

func onlyDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
