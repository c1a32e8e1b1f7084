package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pla-ledger/pla/internal/accounts"
	"github.com/pla-ledger/pla/internal/config"
	"github.com/pla-ledger/pla/internal/gitops"
	"github.com/pla-ledger/pla/internal/ofxmap"
)

func newInitCommand() *cobra.Command {
	var owner string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new pla project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, owner, !noGit)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "account holder name, used to spot transfers between own accounts")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not initialize a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, owner string, withGit bool) error {
	if fileExists(filepath.Join(dir, config.FileName)) {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"accounts",
		"ledger",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(owner)
	cfg.Git.AutoCommit = withGit
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	registry := accounts.NewRegistry(accounts.DefaultAccounts())
	if err := registry.Save(dir); err != nil {
		return fmt.Errorf("writing account registry: %w", err)
	}

	if err := writeMappingHeader(filepath.Join(dir, cfg.Ledger.Mapping)); err != nil {
		return err
	}

	gitignore := "import/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	out := cmd.OutOrStdout()
	if !withGit {
		fmt.Fprintf(out, "Initialized pla project at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(dir, "init: pla project", author,
		config.FileName, accounts.File, cfg.Ledger.Mapping, ".gitignore")
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized pla project at %s (%s)\n", dir, hash)
	return nil
}

func writeMappingHeader(path string) error {
	if fileExists(path) {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mapping file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(ofxmap.MappingHeader); err != nil {
		return fmt.Errorf("writing mapping header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
