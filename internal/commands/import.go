package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pla-ledger/pla/internal/accounts"
	"github.com/pla-ledger/pla/internal/importer"
	"github.com/pla-ledger/pla/internal/importlog"
	"github.com/pla-ledger/pla/internal/journal"
	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/ofxmap"
	"github.com/pla-ledger/pla/internal/pipeline"
)

func newImportCommand() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import exports and statements into the ledger",
	}
	importCmd.AddCommand(newImportOrganizzeCommand())
	importCmd.AddCommand(newImportOFXCommand())
	return importCmd
}

func newImportOrganizzeCommand() *cobra.Command {
	var dryRun, move bool

	cmd := &cobra.Command{
		Use:   "organizze [files...]",
		Short: "Rebuild the history ledger from Organizze exports",
		Long: "Reads every export given (or every .xlsx, .xls and .csv file under import/),\n" +
			"classifies and pairs the rows and replaces the history ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoFlag(cmd)
			if err != nil {
				return err
			}
			p, err := openProject(dir)
			if err != nil {
				return err
			}
			return runImportOrganizze(cmd, p, args, dryRun, move)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the summary without writing")
	cmd.Flags().BoolVar(&move, "move", false, "move scanned exports to import/processed afterwards")

	return cmd
}

func runImportOrganizze(cmd *cobra.Command, p *project, paths []string, dryRun, move bool) error {
	parsers := importer.DefaultRegistry()

	scanned := len(paths) == 0
	if scanned {
		files, err := importer.Scan(p.root, parsers.Formats()...)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no exports found in %s", filepath.Join(p.root, "import"))
	}

	exports := make([][]model.Row, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		rows, err := parsers.ParseFile(path)
		if err != nil {
			return err
		}
		p.log.Info().Str("file", filepath.Base(path)).Int("rows", len(rows)).Msg("parsed export")
		exports = append(exports, rows)
		names = append(names, filepath.Base(path))
	}
	rows := importer.Consolidate(exports...)

	engine, err := pipeline.New(p.cfg.Pipeline(), p.registry, p.log)
	if err != nil {
		return err
	}
	result := engine.Run(rows)

	known, err := p.journal.ExistingOrigins(p.path(p.cfg.Ledger.Imports))
	if err != nil {
		return err
	}
	postings, skipped := pipeline.Dedup(result.Postings, known)
	result.Summary.Duplicates = skipped
	result.Summary.Postings = len(postings)

	out := cmd.OutOrStdout()
	printSummary(out, names, result.Summary)
	printUnresolved(out, result.Unresolved)

	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing written.")
		return nil
	}

	if err := p.journal.Replace(p.path(p.cfg.Ledger.History), postings); err != nil {
		return fmt.Errorf("writing history ledger: %w", err)
	}
	opened, err := p.journal.MergeOpenDirectives(p.path(p.cfg.Ledger.Accounts), journal.AccountsUsed(postings))
	if err != nil {
		return fmt.Errorf("writing open directives: %w", err)
	}
	fmt.Fprintf(out, "Wrote %d postings to %s (%d accounts open)\n", len(postings), p.cfg.Ledger.History, opened)

	entry := importlog.NewEntry(importlog.SourceOrganizze, time.Now())
	entry.Files = names
	entry.Rows = result.Summary.Rows
	entry.Postings = len(postings)
	entry.Duplicates = skipped
	entry.Orphans = result.Summary.OrphanTotal()
	entry.Unresolved = result.Summary.Unresolved
	entry.NeedsReview = result.Summary.Unclassifiable
	return p.finish(cmd, entry, "import: organizze "+strings.Join(names, ", "), scanned && move)
}

func newImportOFXCommand() *cobra.Command {
	var account string
	var dryRun, move bool

	cmd := &cobra.Command{
		Use:   "ofx <file>",
		Short: "Append an OFX bank statement to the imports ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoFlag(cmd)
			if err != nil {
				return err
			}
			p, err := openProject(dir)
			if err != nil {
				return err
			}
			return runImportOFX(cmd, p, args[0], account, dryRun, move)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "bank account: registry id or ledger path (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the summary without writing")
	cmd.Flags().BoolVar(&move, "move", false, "move the statement to import/processed afterwards")

	return cmd
}

func runImportOFX(cmd *cobra.Command, p *project, path, account string, dryRun, move bool) error {
	bankAccount, err := p.bankAccount(account)
	if err != nil {
		return err
	}

	txs, err := importer.ParseOFXFile(path)
	if err != nil {
		return err
	}

	rules, err := ofxmap.LoadRules(p.path(p.cfg.Ledger.Mapping))
	if errors.Is(err, fs.ErrNotExist) {
		p.log.Warn().Str("path", p.cfg.Ledger.Mapping).Msg("no mapping file, every transaction needs review")
		rules, err = nil, nil
	}
	if err != nil {
		return err
	}

	known, err := p.journal.ExistingOrigins(p.path(p.cfg.Ledger.History), p.path(p.cfg.Ledger.Imports))
	if err != nil {
		return err
	}

	classifier := ofxmap.NewClassifier(rules, p.cfg.OFX())
	builder := journal.NewBuilder(p.cfg.Routing, p.registry)
	im := ofxmap.NewImporter(classifier, builder, p.log.With().Str("component", "ofx").Logger())
	postings, stats := im.Build(txs, bankAccount, known)

	out := cmd.OutOrStdout()
	name := filepath.Base(path)
	printStatementStats(out, name, bankAccount, stats)

	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing written.")
		return nil
	}

	if err := p.journal.Append(p.path(p.cfg.Ledger.Imports), postings); err != nil {
		return fmt.Errorf("writing imports ledger: %w", err)
	}
	if len(postings) > 0 {
		if _, err := p.journal.MergeOpenDirectives(p.path(p.cfg.Ledger.Accounts), journal.AccountsUsed(postings)); err != nil {
			return fmt.Errorf("writing open directives: %w", err)
		}
	}
	fmt.Fprintf(out, "Appended %d postings to %s\n", len(postings), p.cfg.Ledger.Imports)

	entry := importlog.NewEntry(importlog.SourceOFX, time.Now())
	entry.Files = []string{name}
	entry.Rows = stats.Transactions
	entry.Postings = stats.Imported
	entry.Duplicates = stats.Duplicates
	entry.NeedsReview = stats.NeedsReview

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	processed := move && filepath.Dir(abs) == filepath.Join(p.root, "import")
	return p.finish(cmd, entry, "import: ofx "+name, processed)
}

// bankAccount resolves --account: a registry id maps to its ledger path, a
// colon-separated value is taken as a ledger path.
func (p *project) bankAccount(account string) (string, error) {
	switch {
	case p.registry.Exists(account):
		return p.registry.Path(account), nil
	case strings.Contains(account, ":"):
		return account, nil
	default:
		return "", fmt.Errorf("unknown account %q: not in %s and not a ledger path", account, accounts.File)
	}
}

// finish commits, logs the run and optionally moves the inputs out of
// import/.
func (p *project) finish(cmd *cobra.Command, entry importlog.Entry, message string, markProcessed bool) error {
	hash, err := p.commit(message)
	if err != nil {
		return err
	}
	if hash != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", hash)
	}
	entry.CommitHash = hash
	if err := importlog.Append(p.root, entry); err != nil {
		return fmt.Errorf("writing import log: %w", err)
	}

	if markProcessed {
		for _, f := range entry.Files {
			if err := importer.MarkProcessed(p.root, f); err != nil {
				return err
			}
		}
	}
	return nil
}
