package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDupesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dupes",
		Short: "Lists distinct groups whose keys look like the same product.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)

			groups, err := a.Catalog.Groups(cmd.Context())
			if err != nil {
				return err
			}

			pairs, err := a.Similarity.NearDuplicates(cmd.Context(), groups)
			if err != nil {
				return err
			}

			if len(pairs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no near-duplicate groups")
				return nil
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Group", "Looks like", "Similarity", "Edits"})
			for _, pair := range pairs {
				t.AppendRow(table.Row{
					pair.LeftName,
					pair.RightName,
					fmt.Sprintf("%.3f", pair.Similarity),
					pair.EditDistance,
				})
			}
			t.Render()
			return nil
		},
	}
}

func newCanonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canon <name>...",
		Short: "Shows the group key and display name a product name canonicalizes to.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonicalizer := appFrom(cmd).Canonicalizer

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Key", "Display name"})
			for _, name := range args {
				canonical := canonicalizer.Canonicalize(name)
				t.AppendRow(table.Row{name, canonical.Key, canonical.DisplayName})
			}
			t.SetCaption("noise table v%d", canonicalizer.Version())
			t.Render()
			return nil
		},
	}
}
