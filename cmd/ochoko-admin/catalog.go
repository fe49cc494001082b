package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/sakeapi"
)

func (c *cli) sakesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sakes",
		Short: "List and delete sakes",
	}
	cmd.AddCommand(c.sakesListCmd(), c.sakesDeleteCmd())
	return cmd
}

func (c *cli) sakesListCmd() *cobra.Command {
	var (
		limit  int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			sakes, err := api.ListSakes(cmd.Context(), sakeapi.ListOptions{Limit: limit})
			if err != nil {
				return err
			}
			sakes = catalog.FilterSakes(sakes, search)

			w := table(c.out)
			fmt.Fprintln(w, "ID\tNAME\tBREWERY\tPREFECTURE\tGRADE\tRATING")
			for _, s := range sakes {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Name, s.BreweryName, s.BreweryPrefecture, s.TokuteiMeisho.Label(), rating(s))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d sakes\n", len(sakes))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of sakes to fetch")
	cmd.Flags().StringVar(&search, "search", "", "only show sakes whose name or brewery contains this")
	return cmd
}

func rating(s sakeapi.Sake) string {
	if s.AverageRating == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f (%d)", *s.AverageRating, s.ReviewCount)
}

func (c *cli) sakesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete sakes by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			api, err := c.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			if !yes {
				ok, err := c.confirm(fmt.Sprintf("Delete %d sakes? This cannot be undone.", len(ids)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(c.out, "Aborted")
					return nil
				}
			}

			resp, err := api.BulkDeleteSakes(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Deleted %d sakes\n", resp.DeletedCount)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// parseIDs keeps the first occurrence of every id.
func parseIDs(args []string) ([]int64, error) {
	seen := make(map[int64]bool, len(args))
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid sake id %q", a)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *cli) duplicatesCmd() *cobra.Command {
	var (
		search string
		sort   string
	)
	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List sake names shared by several sakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			groups, err := api.Duplicates(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(c.out, "No duplicate sake names")
				return nil
			}

			view := catalog.DuplicateView(groups, search, catalog.ParseSortKey(sort))
			fmt.Fprintf(c.out, "Found %d names shared by several sakes\n", len(view))
			for _, g := range view {
				fmt.Fprintf(c.out, "\n%s (%d)\n", g.Name, g.Count)
				w := table(c.out)
				for _, s := range g.Sakes {
					fmt.Fprintf(w, "  #%d\t%s\t%s\t%s\n", s.ID, s.BreweryName, s.BreweryPrefecture, s.CreatedAt.Format("2006-01-02"))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, brewery or prefecture")
	cmd.Flags().StringVar(&sort, "sort", string(catalog.SortByCount), "count, name_asc or name_desc")
	return cmd
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
