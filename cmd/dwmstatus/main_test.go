package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusbar/dwmstatus/pkg/types"
	"github.com/statusbar/dwmstatus/pkg/version"
)

func TestCommandTree(t *testing.T) {
	cmd := NewCommand()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "once", "status", "refresh", "version", "install", "uninstall"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"log-level", "config", "socket"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.Version+" "+version.GitCommit+"\n", out.String())
}

func TestRefreshRejectsUnknownCategory(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"refresh", "cpu"})

	assert.Error(t, cmd.Execute())
}

func TestSetupLoggerRejectsBadLevel(t *testing.T) {
	old := logLevel
	t.Cleanup(func() { logLevel = old })

	logLevel = "chatty"
	assert.Error(t, setupLogger())

	logLevel = "debug"
	assert.NoError(t, setupLogger())
}

func TestPrintStatus(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	cmd := NewStatusCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	at := time.Date(2024, 3, 5, 9, 7, 0, 0, time.Local)
	printStatus(cmd, &types.Status{
		Line:    " a | b ",
		Emitted: true,
		Started: at,
		Writes:  types.WriteStats{Written: 2, Suppressed: 5},
		Fields: []types.Field{
			{Category: "network", Display: "eth0: rx: 1 kB/s tx: 2 kB/s", Updated: at},
			{Category: "volume", Display: "Vol: [err]", Stale: true, Error: "amixer failed", Failed: at},
		},
	})

	s := out.String()
	assert.Contains(t, s, `" a | b "`)
	assert.Contains(t, s, "2 written, 5 unchanged, 0 failed")
	assert.Contains(t, s, "✔ network")
	assert.Contains(t, s, "✘ volume")
	assert.Contains(t, s, "amixer failed")
	assert.Contains(t, s, "failing since: 2024-03-05 09:07:00")
}
