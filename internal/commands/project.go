package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/accounts"
	"github.com/pla-ledger/pla/internal/config"
	"github.com/pla-ledger/pla/internal/gitops"
	"github.com/pla-ledger/pla/internal/journal"
	"github.com/pla-ledger/pla/internal/logger"
)

// project is an initialized pla directory with its config and registry
// loaded.
type project struct {
	root     string
	cfg      *config.Config
	registry *accounts.Registry
	journal  *journal.Service
	log      zerolog.Logger
}

func openProject(dir string) (*project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadProject(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w (run pla init first)", config.FileName, err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	registry, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckAccounts(registry); err != nil {
		return nil, err
	}

	return &project{
		root:     root,
		cfg:      cfg,
		registry: registry,
		journal:  journal.NewService(cfg.Ledger.Currency, log.With().Str("component", "journal").Logger()),
		log:      log,
	}, nil
}

// path resolves a configured path against the project root.
func (p *project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// ledgerFiles are the generated files committed after an import.
func (p *project) ledgerFiles() []string {
	return []string{p.cfg.Ledger.History, p.cfg.Ledger.Imports, p.cfg.Ledger.Accounts}
}

// commit records the ledger files in git when auto_commit is on. Returns the
// short hash, or "" when nothing was committed.
func (p *project) commit(message string) (string, error) {
	if !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.root) {
		return "", nil
	}
	var existing []string
	for _, f := range p.ledgerFiles() {
		if f != "" && fileExists(p.path(f)) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}
	author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(p.root, message, author, existing...)
	if err != nil {
		return "", fmt.Errorf("committing ledger: %w", err)
	}
	return hash, nil
}
