package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.False(t, f.Console())
	assert.Equal(t, []string{"BAT0", "BAT1", "BAT2"}, f.Batteries())
	assert.Equal(t, BackendSysfs, f.BatteryBackend())
	assert.Equal(t, BackendProcfs, f.NetworkBackend())
	assert.True(t, f.NetworkDevices())
	assert.Equal(t, 30*time.Second, f.NetworkMaxGap())
	assert.Equal(t, "default", f.AudioCard())
	assert.Equal(t, "Master", f.AudioControl())
	assert.Equal(t, "2006.01.02 15:04", f.DateFormat())
	assert.Equal(t, "@every 2s", f.Schedule("network"))
	assert.Equal(t, "@every 10s", f.Schedule("date"))
	assert.Equal(t, "@every 5s", f.Schedule("battery"))
	assert.Equal(t, "@every 1s", f.Schedule("status"))
	assert.Equal(t, []string{"network", "volume", "date", "battery"}, f.FormatOrder())
	assert.Equal(t, " | ", f.FormatSeparator())
	assert.Equal(t, " ", f.FormatPadding())
	assert.NotEmpty(t, f.Socket())
	assert.Equal(t, "info", f.LogLevel())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
display: ":1"
batteries: [BAT1]
battery:
  backend: distatus
network:
  interface: wlp4s0
  backend: gopsutil
  devices: false
  max_gap: 1m
audio:
  card: "1"
schedule:
  date: "0 * * * * *"
format:
  order: [date, battery]
  separator: " :: "
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := NewFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":1", f.Display())
	assert.Equal(t, []string{"BAT1"}, f.Batteries())
	assert.Equal(t, BackendDistatus, f.BatteryBackend())
	assert.Equal(t, "wlp4s0", f.NetworkInterface())
	assert.Equal(t, BackendGopsutil, f.NetworkBackend())
	assert.False(t, f.NetworkDevices())
	assert.Equal(t, time.Minute, f.NetworkMaxGap())
	assert.Equal(t, "1", f.AudioCard())
	assert.Equal(t, "Master", f.AudioControl())
	assert.Equal(t, "0 * * * * *", f.Schedule("date"))
	assert.Equal(t, "@every 2s", f.Schedule("network"))
	assert.Equal(t, []string{"date", "battery"}, f.FormatOrder())
	assert.Equal(t, " :: ", f.FormatSeparator())
	assert.Equal(t, " ", f.FormatPadding())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DWMSTATUS_CONSOLE", "1")
	t.Setenv("DWMSTATUS_NETWORK_INTERFACE", "eth0")

	f, err := NewFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.True(t, f.Console())
	assert.Equal(t, "eth0", f.NetworkInterface())
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"battery backend", "battery:\n  backend: upower\n", ErrInvalidBackend},
		{"network backend", "network:\n  backend: netlink\n", ErrInvalidBackend},
		{"order", "format:\n  order: [network, cpu]\n", ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := NewFile(path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio:\n  control: PCM\n"), 0o644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PCM", f.AudioControl())

	require.NoError(t, os.WriteFile(path, []byte("audio: [broken\n"), 0o644))
	assert.Error(t, f.Load())
	assert.Equal(t, "PCM", f.AudioControl())

	require.NoError(t, os.WriteFile(path, []byte("audio:\n  control: Speaker\n"), 0o644))
	require.NoError(t, f.Load())
	assert.Equal(t, "Speaker", f.AudioControl())
}

func TestRawIsACopy(t *testing.T) {
	f, err := NewFile("")
	require.NoError(t, err)

	raw := f.Raw()
	raw.Batteries[0] = "BAT9"
	raw.Schedule["status"] = "@every 1h"

	assert.Equal(t, "BAT0", f.Batteries()[0])
	assert.Equal(t, "@every 1s", f.Schedule("status"))
	assert.NotEmpty(t, f.LogrusFields())
}
