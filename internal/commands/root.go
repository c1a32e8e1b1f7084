package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pla-ledger/pla/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pla",
		Short:   "Organizze exports and OFX statements to Beancount",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("repo", ".", "project directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

func repoFlag(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("repo")
	if err != nil {
		return "", fmt.Errorf("reading --repo: %w", err)
	}
	return dir, nil
}
