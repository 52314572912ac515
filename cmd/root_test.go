package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/buildinfo"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := RootCommand(&app.Context{})

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"tui", "list", "add", "species", "devserver", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "server", "debug"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionSkipsConfiguration(t *testing.T) {
	ctx := &app.Context{BuildInfo: &buildinfo.Context{Version: "v1.2.3", BuildDate: "2026-01-02"}}
	root := RootCommand(ctx)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "duckwatch v1.2.3 (built 2026-01-02)\n", out.String())
	assert.Nil(t, ctx.Settings, "version must not load settings")
	require.NoError(t, ctx.Close())
}
