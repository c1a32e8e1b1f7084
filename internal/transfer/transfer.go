// Package transfer pairs the two legs of internal transfers between source
// accounts and reports what is left as orphans.
package transfer

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/textnorm"
)

// Config controls which rows enter the matching pool and how far apart the
// two legs may be. Credits left unpaired whose description contains one of
// ReceivedKeywords are money from outside; an empty list disables that.
type Config struct {
	Categories       []string `yaml:"categories"`
	ToleranceDays    int      `yaml:"tolerance_days"`
	ReceivedKeywords []string `yaml:"received_keywords"`
}

// DefaultConfig returns the transfer categories used by Organizze.
func DefaultConfig() Config {
	return Config{
		Categories:       []string{"outros", "transferências", "transferência", "pagamento de fatura"},
		ToleranceDays:    2,
		ReceivedKeywords: []string{"transferência recebida"},
	}
}

// Result is the output of a matching run.
type Result struct {
	Pairs    []model.TransferPair // ordered by debit row index
	Orphans  []model.Orphan       // ordered by row index
	Received []model.Row          // ordered by row index
}

// Consumed returns the indexes of every row that is posted as a pair, an
// orphan or a received transfer.
func (r Result) Consumed() map[int]bool {
	out := make(map[int]bool, 2*len(r.Pairs)+len(r.Orphans)+len(r.Received))
	for _, p := range r.Pairs {
		out[p.Debit.Index] = true
		out[p.Credit.Index] = true
	}
	for _, o := range r.Orphans {
		out[o.Row.Index] = true
	}
	for _, row := range r.Received {
		out[row.Index] = true
	}
	return out
}

// Matcher runs the two-phase transfer pairing.
type Matcher struct {
	cfg        Config
	categories map[string]bool
	log        zerolog.Logger
}

// New creates a Matcher.
func New(cfg Config, log zerolog.Logger) *Matcher {
	cats := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cats[textnorm.Fold(c)] = true
	}
	if cfg.ToleranceDays < 0 {
		cfg.ToleranceDays = 0
	}
	return &Matcher{cfg: cfg, categories: cats, log: log}
}

// InPool reports whether a classified row is a transfer candidate.
func (m *Matcher) InPool(c model.Classification) bool {
	return c.Tag == model.TagUnclassified && m.categories[textnorm.Fold(c.Row.Category)]
}

func (m *Matcher) isReceived(r model.Row) bool {
	return r.Direction() == model.Credit && textnorm.ContainsAny(r.Description, m.cfg.ReceivedKeywords...)
}

type candidate struct {
	row      model.Row
	category string
	matched  bool
}

type bucketKey struct {
	date   string
	amount string
}

func keyFor(r model.Row, offsetDays int) bucketKey {
	return bucketKey{
		date:   r.Date.AddDate(0, 0, offsetDays).Format("2006-01-02"),
		amount: r.Abs().StringFixed(2),
	}
}

// Match pairs the transfer pool and returns pairs, orphans and received
// transfers. Other rows outside the pool are ignored.
func (m *Matcher) Match(rows []model.Classification) Result {
	var res Result
	var debits, creditOrder []*candidate
	credits := make(map[bucketKey][]*candidate)

	for _, c := range rows {
		switch {
		case c.Tag == model.TagOpeningBalance:
			res.Orphans = append(res.Orphans, model.Orphan{Row: c.Row, Reason: model.OrphanOpeningBalance})
		case c.Tag == model.TagBalanceAdjustment:
			res.Orphans = append(res.Orphans, model.Orphan{Row: c.Row, Reason: model.OrphanAdjustment})
		case m.InPool(c):
			cand := &candidate{row: c.Row, category: textnorm.Fold(c.Row.Category)}
			if c.Row.Direction() == model.Debit {
				debits = append(debits, cand)
			} else {
				k := keyFor(c.Row, 0)
				credits[k] = append(credits[k], cand)
				creditOrder = append(creditOrder, cand)
			}
		case c.Tag == model.TagUnclassified && m.isReceived(c.Row):
			res.Received = append(res.Received, c.Row)
		}
	}

	// Phase 1: same date, same amount, same category.
	for _, d := range debits {
		for _, c := range credits[keyFor(d.row, 0)] {
			if c.matched || c.row.Account == d.row.Account || c.category != d.category {
				continue
			}
			res.Pairs = append(res.Pairs, m.pair(d, c, 0))
			break
		}
	}

	// Phase 2: any category, nearest date within tolerance.
	for _, d := range debits {
		if d.matched {
			continue
		}
	search:
		for _, off := range offsets(m.cfg.ToleranceDays) {
			for _, c := range credits[keyFor(d.row, off)] {
				if c.matched || c.row.Account == d.row.Account {
					continue
				}
				res.Pairs = append(res.Pairs, m.pair(d, c, off))
				break search
			}
		}
	}

	for _, d := range debits {
		if !d.matched {
			res.Orphans = append(res.Orphans, model.Orphan{Row: d.row, Reason: model.OrphanNoPairDebit})
		}
	}
	for _, c := range creditOrder {
		switch {
		case c.matched:
		case m.isReceived(c.row):
			res.Received = append(res.Received, c.row)
		default:
			res.Orphans = append(res.Orphans, model.Orphan{Row: c.row, Reason: model.OrphanNoPairCredit})
		}
	}

	sort.SliceStable(res.Pairs, func(i, j int) bool { return res.Pairs[i].Debit.Index < res.Pairs[j].Debit.Index })
	sort.SliceStable(res.Orphans, func(i, j int) bool { return res.Orphans[i].Row.Index < res.Orphans[j].Row.Index })
	sort.SliceStable(res.Received, func(i, j int) bool { return res.Received[i].Index < res.Received[j].Index })

	for _, o := range res.Orphans {
		m.log.Warn().
			Int("row", o.Row.Index).
			Str("account", o.Row.Account).
			Str("amount", o.Row.Amount.StringFixed(2)).
			Str("reason", string(o.Reason)).
			Msg("orphan transfer")
	}
	m.log.Info().
		Int("pairs", len(res.Pairs)).
		Int("orphans", len(res.Orphans)).
		Int("received", len(res.Received)).
		Msg("transfer matching done")
	return res
}

func (m *Matcher) pair(d, c *candidate, offset int) model.TransferPair {
	d.matched = true
	c.matched = true
	conf := model.SameCategory
	if d.category != c.category {
		conf = model.CrossCategory
	}
	if offset < 0 {
		offset = -offset
	}
	return model.TransferPair{Debit: d.row, Credit: c.row, Confidence: conf, SkewDays: offset}
}

// offsets returns 0, -1, +1, -2, +2 ... up to tolerance.
func offsets(tolerance int) []int {
	out := []int{0}
	for i := 1; i <= tolerance; i++ {
		out = append(out, -i, i)
	}
	return out
}
