package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/duckwatch/cmd/add"
	"github.com/tphakala/duckwatch/cmd/devserver"
	"github.com/tphakala/duckwatch/cmd/list"
	"github.com/tphakala/duckwatch/cmd/species"
	"github.com/tphakala/duckwatch/cmd/tui"
	"github.com/tphakala/duckwatch/cmd/version"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/conf"
)

// RootCommand creates and returns the root command. Without a subcommand
// it starts the terminal UI.
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "duckwatch",
		Short:        "duckwatch duck sightings client",
		SilenceUsage: true,
	}

	var configFile string
	if err := setupFlags(rootCmd, &configFile); err != nil {
		// flags are static, a failure here is a programming error
		panic(err)
	}

	tuiCmd := tui.Command(ctx)
	versionCmd := version.Command(ctx)

	subcommands := []*cobra.Command{
		tuiCmd,
		list.Command(ctx),
		add.Command(ctx),
		species.Command(ctx),
		devserver.Command(ctx),
		versionCmd,
	}
	rootCmd.AddCommand(subcommands...)
	rootCmd.RunE = tuiCmd.RunE

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version needs no configuration
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		if configFile != "" {
			conf.SetConfigFile(configFile)
		}
		settings, err := conf.Load()
		if err != nil {
			return err
		}
		ctx.Settings = settings

		interactive := cmd == rootCmd || cmd.Name() == tuiCmd.Name()
		closeLog, err := app.SetupLogging(settings, interactive)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		ctx.OnClose(closeLog)

		if err := app.SetupTelemetry(settings, ctx.BuildInfo); err != nil {
			return err
		}
		ctx.OnClose(func() error {
			app.ShutdownTelemetry()
			return nil
		})

		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(configFile, "config", "", "Path to config file (default searches ~/.config/duckwatch and .)")
	flags.String("server", "", "Base URL of the sightings backend")
	flags.BoolP("debug", "d", false, "Enable debug output")

	if err := viper.BindPFlag("server.url", flags.Lookup("server")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := viper.BindPFlag("debug", flags.Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
