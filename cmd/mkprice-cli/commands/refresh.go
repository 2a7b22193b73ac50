package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetches every vendor feed and replaces the stored catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := appFrom(cmd).Catalog.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Source", "Listings", "Status"})
			for _, report := range result.Sources {
				status := "ok"
				if report.Failed {
					status = "failed: " + report.Error
				}
				t.AppendRow(table.Row{report.Source, report.Products, status})
			}
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d groups, %d listings, %d duplicate links dropped\n",
				result.RunID, result.GroupsInserted, result.ProductsInserted, result.DuplicatesDropped)
			return nil
		},
	}
}
