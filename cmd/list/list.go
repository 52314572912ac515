// Package list implements the list command.
package list

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// Command creates the command that prints the sightings.
func Command(ctx *app.Context) *cobra.Command {
	var (
		sortBy string
		desc   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List duck sightings",
		Long:  "Fetch all sightings from the backend and print them sorted by the chosen column.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			column, ok := sighting.ParseColumn(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort column %q", sortBy)
			}

			a, err := app.New(ctx.Settings)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.List.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("could not load sightings: %w", err)
			}

			// selecting a column first sorts it ascending, a second select flips it
			if a.List.SortState().Column != column {
				a.List.SelectSortColumn(column)
			}
			if desc == a.List.SortState().Ascending {
				a.List.SelectSortColumn(column)
			}

			loc, err := ctx.Settings.Form.Location()
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, a.List.Records(), a.List.SortState(), loc)
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", sighting.ColumnID.String(), "Column to sort by (id, datetime, species, description, count)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort in descending order")
	cmd.Flags().StringVarP(&output, "output", "o", string(formatTable), "Output format (table, json, yaml)")

	return cmd
}
