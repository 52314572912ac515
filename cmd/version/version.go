// Package version implements the version command.
package version

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/duckwatch/internal/app"
)

// Command creates the command that prints build information.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), ctx.BuildInfo.String())
			return err
		},
	}
}
