// Package tui implements the interactive terminal command.
package tui

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/logging"
	ui "github.com/tphakala/duckwatch/internal/tui"
)

// Command creates the command that runs the terminal UI. It is also what
// the bare root command runs.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and report sightings in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(ctx.Settings)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.StartMetrics(); err != nil {
				logging.Warn("metrics endpoint disabled", "error", err)
			}

			loc, err := ctx.Settings.Form.Location()
			if err != nil {
				return err
			}

			m := ui.New(cmd.Context(), a.List, a.Form, ui.WithLocation(loc))
			return ui.Run(cmd.Context(), m)
		},
	}
}
