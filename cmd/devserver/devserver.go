// Package devserver implements the command that runs the in-memory backend.
package devserver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/devserver"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability"
)

// Command creates the devserver command.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory sightings backend",
		Long:  "Serve the sightings REST API from memory for local development and testing. Data is lost on exit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := ctx.Settings
			log := logging.ForService("devserver")

			store := devserver.NewStore(devserver.DefaultSpecies)
			if settings.DevServer.Seed {
				store = devserver.NewSeededStore()
			}

			m, err := observability.NewMetrics()
			if err != nil {
				return err
			}
			stopMetrics, err := app.ServeMetrics(settings, m)
			if err != nil {
				log.Warn("metrics endpoint disabled", "error", err)
			} else {
				defer stopMetrics()
			}

			server := devserver.New(store, devserver.WithMetrics(m.HTTP), devserver.WithLogger(log))
			addr, err := server.Listen(settings.DevServer.Listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", settings.DevServer.Listen, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dev backend listening on http://%s\n", addr)

			return server.Serve(cmd.Context())
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("listen", viper.GetString("devserver.listen"), "Listen address and port")
	cmd.Flags().Bool("seed", viper.GetBool("devserver.seed"), "Preload example sightings")

	if err := viper.BindPFlag("devserver.listen", cmd.Flags().Lookup("listen")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := viper.BindPFlag("devserver.seed", cmd.Flags().Lookup("seed")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
