// Package pipeline runs the classification engine over a consolidated export:
// classify, pair transfers, resolve card payments, build postings.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/accounts"
	"github.com/pla-ledger/pla/internal/cardpay"
	"github.com/pla-ledger/pla/internal/classify"
	"github.com/pla-ledger/pla/internal/journal"
	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/transfer"
)

// Config bundles the settings of every stage.
type Config struct {
	Classification classify.Config
	Transfers      transfer.Config
	CardPayments   cardpay.Config
	Routing        journal.Routing
}

// DefaultConfig returns the defaults of every stage.
func DefaultConfig() Config {
	return Config{
		Classification: classify.DefaultConfig(),
		Transfers:      transfer.DefaultConfig(),
		CardPayments:   cardpay.DefaultConfig(),
		Routing:        journal.DefaultRouting(),
	}
}

// Summary counts what happened to the rows of a run.
type Summary struct {
	Rows           int
	Expenses       int
	Incomes        int
	CardPayments   int
	Atm            int
	Boletos        int
	CardCategory   int
	Pairs          int
	Received       int
	Orphans        map[model.OrphanReason]int
	Unresolved     int
	Unclassifiable int
	Duplicates     int
	Postings       int
}

// OrphanTotal sums orphans over all reasons.
func (s Summary) OrphanTotal() int {
	n := 0
	for _, c := range s.Orphans {
		n += c
	}
	return n
}

// Result is the output of Engine.Run.
type Result struct {
	Postings   []model.Posting // sorted by date, then by first row
	Unresolved []model.CardResolution
	Summary    Summary
}

// Engine wires the stages together.
type Engine struct {
	classifier *classify.Classifier
	matcher    *transfer.Matcher
	resolver   *cardpay.Resolver
	builder    *journal.Builder
	log        zerolog.Logger
}

// New creates an Engine.
func New(cfg Config, registry *accounts.Registry, log zerolog.Logger) (*Engine, error) {
	resolver, err := cardpay.New(cfg.CardPayments, log.With().Str("stage", "cardpay").Logger())
	if err != nil {
		return nil, fmt.Errorf("card payment rules: %w", err)
	}
	return &Engine{
		classifier: classify.New(cfg.Classification, registry, log.With().Str("stage", "classify").Logger()),
		matcher:    transfer.New(cfg.Transfers, log.With().Str("stage", "transfer").Logger()),
		resolver:   resolver,
		builder:    journal.NewBuilder(cfg.Routing, registry),
		log:        log,
	}, nil
}

type ordered struct {
	index   int
	posting model.Posting
}

// Run turns rows into postings. Each row ends up in exactly one posting, or
// in Result.Unresolved when its card payment cannot be assigned. Rows are
// renumbered by position.
func (e *Engine) Run(rows []model.Row) Result {
	indexed := make([]model.Row, len(rows))
	for i, r := range rows {
		r.Index = i
		indexed[i] = r
	}

	sum := Summary{Rows: len(indexed), Orphans: make(map[model.OrphanReason]int)}
	var out []ordered
	emit := func(idx int, p model.Posting) { out = append(out, ordered{index: idx, posting: p}) }

	classified := e.classifier.ClassifyAll(indexed)

	matched := e.matcher.Match(classified)
	consumed := matched.Consumed()
	for _, tp := range matched.Pairs {
		emit(tp.Debit.Index, e.builder.Pair(tp))
		sum.Pairs++
	}
	for _, o := range matched.Orphans {
		emit(o.Row.Index, e.builder.Orphan(o))
		sum.Orphans[o.Reason]++
	}
	for _, r := range matched.Received {
		emit(r.Index, e.builder.Received(r))
		sum.Received++
	}

	var unresolved []model.CardResolution
	for _, res := range e.resolver.Resolve(classified) {
		if !res.Resolved() {
			unresolved = append(unresolved, res)
			continue
		}
		emit(res.Row.Index, e.builder.CardPayment(res))
		sum.CardPayments++
	}
	sum.Unresolved = len(unresolved)

	for _, c := range classified {
		if consumed[c.Row.Index] || c.Tag == model.TagCardBillPayment {
			continue
		}
		if p, ok := e.builder.Special(c); ok {
			emit(c.Row.Index, p)
			switch c.Tag {
			case model.TagAtmWithdrawal:
				sum.Atm++
			case model.TagBoletoPayment:
				sum.Boletos++
			case model.TagCardCategoryExpense:
				sum.CardCategory++
			}
			continue
		}
		emit(c.Row.Index, e.builder.Regular(c.Row))
		if c.Row.Direction() == model.Debit {
			sum.Expenses++
		} else {
			sum.Incomes++
		}
		if journal.IsPlaceholderCategory(c.Row.Category) {
			sum.Unclassifiable++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].posting.Date, out[j].posting.Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].index < out[j].index
	})
	postings := make([]model.Posting, len(out))
	for i, o := range out {
		postings[i] = o.posting
	}
	sum.Postings = len(postings)

	e.log.Info().
		Int("rows", sum.Rows).
		Int("postings", sum.Postings).
		Int("pairs", sum.Pairs).
		Int("orphans", sum.OrphanTotal()).
		Int("unresolved", sum.Unresolved).
		Int("unclassifiable", sum.Unclassifiable).
		Msg("pipeline done")

	return Result{Postings: postings, Unresolved: unresolved, Summary: sum}
}

// Dedup drops postings whose origem_id is already in known. Repeats within
// the batch are kept.
func Dedup(postings []model.Posting, known map[string]bool) (kept []model.Posting, skipped int) {
	for _, p := range postings {
		if known[p.OriginID()] {
			skipped++
			continue
		}
		kept = append(kept, p)
	}
	return kept, skipped
}
