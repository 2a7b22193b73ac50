package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func newGroupsCmd() *cobra.Command {
	var (
		filter domain.GroupFilter
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Lists product groups from the stored catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := appFrom(cmd).Catalog.ListGroups(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if limit > 0 && len(groups) > limit {
				groups = groups[:limit]
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Price", "Stock", "Category", "Listings"})
			for _, group := range groups {
				t.AppendRow(table.Row{group.DisplayName, displayPrice(group.Price), group.Stock, group.Category, len(group.Members)})
			}
			t.AppendFooter(table.Row{"", "", "", "Total", len(groups)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&filter.Categories, "category", "c", nil, "only groups whose category contains any of these")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "only groups whose name contains this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many groups")

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Shows one product group and its vendor listings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := appFrom(cmd).Catalog.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\ncheapest: %s, %s, %s\n",
				group.DisplayName, group.Key, displayPrice(group.Price), group.Stock, group.Category)

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Vendor", "Listing", "Price", "Stock", "Link"})
			for _, member := range group.Members {
				t.AppendRow(table.Row{member.Vendor, member.Name, member.Price, member.Stock, member.Link})
			}
			t.Render()
			return nil
		},
	}
}

func displayPrice(price string) string {
	if price == "" {
		return "-"
	}
	return price
}
