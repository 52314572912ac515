// Package species implements the species command.
package species

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/duckwatch/internal/app"
)

// Command creates the command that prints the species the backend accepts.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "species",
		Short: "List known duck species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(ctx.Settings)
			if err != nil {
				return err
			}
			defer a.Close()

			names, err := a.Client.ListSpecies(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not load species: %w", err)
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
