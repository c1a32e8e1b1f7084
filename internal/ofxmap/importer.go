package ofxmap

import (
	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/id"
	"github.com/pla-ledger/pla/internal/journal"
	"github.com/pla-ledger/pla/internal/model"
)

// Stats counts the outcome of one statement import.
type Stats struct {
	Transactions  int
	Imported      int
	Duplicates    int
	NeedsReview   int
	SelfTransfers int
}

// Importer turns statement transactions into deduplicated postings.
type Importer struct {
	classifier *Classifier
	builder    *journal.Builder
	log        zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(classifier *Classifier, builder *journal.Builder, log zerolog.Logger) *Importer {
	return &Importer{classifier: classifier, builder: builder, log: log}
}

// Build classifies txs for bankAccount (a ledger path). Transactions whose
// origin id is in known, or repeats an earlier one of the same statement,
// are skipped. known is not modified.
func (im *Importer) Build(txs []model.StatementTransaction, bankAccount string, known map[string]bool) ([]model.Posting, Stats) {
	seen := make(map[string]bool, len(known)+len(txs))
	for k := range known {
		seen[k] = true
	}

	stats := Stats{Transactions: len(txs)}
	var postings []model.Posting
	for _, tx := range txs {
		origin := id.ForStatement(tx)
		if seen[origin] {
			stats.Duplicates++
			im.log.Debug().Str("origin", origin).Msg("duplicate transaction skipped")
			continue
		}
		seen[origin] = true

		m := im.classifier.Classify(tx.Payee, tx.Memo)
		switch m.Kind {
		case MatchSelfTransfer:
			stats.SelfTransfers++
		case MatchFallback:
			stats.NeedsReview++
			im.log.Warn().
				Str("origin", origin).
				Str("payee", tx.Payee).
				Str("memo", tx.Memo).
				Msg("no mapping rule matched")
		}
		im.log.Debug().
			Str("origin", origin).
			Str("account", m.Account).
			Str("kind", string(m.Kind)).
			Str("pattern", m.Pattern).
			Msg("classified statement transaction")

		postings = append(postings, im.builder.Statement(tx, bankAccount, m.Account, m.Kind == MatchSelfTransfer))
	}
	stats.Imported = len(postings)

	im.log.Info().
		Int("transactions", stats.Transactions).
		Int("imported", stats.Imported).
		Int("duplicates", stats.Duplicates).
		Int("needs_review", stats.NeedsReview).
		Msg("statement processed")
	return postings, stats
}
