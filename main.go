package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/duckwatch/cmd"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/buildinfo"
	"github.com/tphakala/duckwatch/internal/logging"
)

// buildDate and version are set at build time with -ldflags
var buildDate string
var version string

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	logging.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &app.Context{
		BuildInfo: &buildinfo.Context{
			Version:   version,
			BuildDate: buildDate,
		},
	}

	rootCmd := cmd.RootCommand(appCtx)
	runErr := rootCmd.ExecuteContext(ctx)

	if err := appCtx.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}

	if runErr != nil {
		return 1
	}
	return 0
}
