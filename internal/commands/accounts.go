package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pla-ledger/pla/internal/model"
)

func newAccountsCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the account registry",
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

			list := p.registry.All()
			if kind != "" {
				k := model.AccountKind(kind)
				if !k.Valid() {
					return fmt.Errorf("unknown kind %q (asset or liability)", kind)
				}
				list = p.registry.ByKind(k)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tLEDGER PATH")
			for _, a := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Kind, p.registry.Path(a.ID))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list accounts of this kind")

	return cmd
}
