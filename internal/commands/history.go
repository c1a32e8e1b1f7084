package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pla-ledger/pla/internal/importlog"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoFlag(cmd)
			if err != nil {
				return err
			}
			p, err := openProject(dir)
			if err != nil {
				return err
			}

			entries, err := importlog.Read(p.root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No imports yet.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tWHEN\tSOURCE\tROWS\tPOSTINGS\tDUPLICATES\tREVIEW\tCOMMIT\tFILES")
			for _, e := range entries {
				commit := e.CommitHash
				if commit == "" {
					commit = "-"
				}
				run := e.RunID
				if len(run) > 8 {
					run = run[:8]
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
					run, e.Timestamp.Local().Format(time.DateTime), e.Source,
					e.Rows, e.Postings, e.Duplicates, e.NeedsReview, commit, strings.Join(e.Files, ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "only show the most recent runs")

	return cmd
}
