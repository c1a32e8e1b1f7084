package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/ofxmap"
	"github.com/pla-ledger/pla/internal/pipeline"
)

func printSummary(w io.Writer, files []string, s pipeline.Summary) {
	fmt.Fprintf(w, "Files: %s\n", strings.Join(files, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Rows\t%d\n", s.Rows)
	fmt.Fprintf(tw, "Expenses\t%d\n", s.Expenses)
	fmt.Fprintf(tw, "Incomes\t%d\n", s.Incomes)
	fmt.Fprintf(tw, "Transfer pairs\t%d\n", s.Pairs)
	fmt.Fprintf(tw, "Received transfers\t%d\n", s.Received)
	fmt.Fprintf(tw, "Card payments\t%d\n", s.CardPayments)
	fmt.Fprintf(tw, "ATM withdrawals\t%d\n", s.Atm)
	fmt.Fprintf(tw, "Boletos\t%d\n", s.Boletos)
	fmt.Fprintf(tw, "Card category\t%d\n", s.CardCategory)
	fmt.Fprintf(tw, "Orphans\t%d\n", s.OrphanTotal())

	reasons := make([]string, 0, len(s.Orphans))
	for r := range s.Orphans {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(tw, "  %s\t%d\n", r, s.Orphans[model.OrphanReason(r)])
	}

	fmt.Fprintf(tw, "Unresolved card payments\t%d\n", s.Unresolved)
	fmt.Fprintf(tw, "Needs review\t%d\n", s.Unclassifiable)
	fmt.Fprintf(tw, "Duplicates skipped\t%d\n", s.Duplicates)
	fmt.Fprintf(tw, "Postings\t%d\n", s.Postings)
	tw.Flush()
}

func printUnresolved(w io.Writer, unresolved []model.CardResolution) {
	if len(unresolved) == 0 {
		return
	}
	fmt.Fprintln(w, "Unresolved card payments (not written):")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, u := range unresolved {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			u.Row.Date.Format("2006-01-02"), u.Row.Account, u.Row.Amount.StringFixed(2), u.Row.Description, u.Reason)
	}
	tw.Flush()
}

func printStatementStats(w io.Writer, file, bankAccount string, s ofxmap.Stats) {
	fmt.Fprintf(w, "Statement: %s -> %s\n", file, bankAccount)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Transactions\t%d\n", s.Transactions)
	fmt.Fprintf(tw, "Imported\t%d\n", s.Imported)
	fmt.Fprintf(tw, "Duplicates skipped\t%d\n", s.Duplicates)
	fmt.Fprintf(tw, "Self transfers\t%d\n", s.SelfTransfers)
	fmt.Fprintf(tw, "Needs review\t%d\n", s.NeedsReview)
	tw.Flush()
}
