package config

import "time"

// Config is the daemon configuration. Getters are safe for concurrent use.
type Config interface {
	Console() bool
	Display() string
	Socket() string
	LogLevel() string
	LogFile() string

	Batteries() []string
	BatteryBackend() string
	NetworkInterface() string
	NetworkBackend() string
	NetworkDevices() bool
	NetworkMaxGap() time.Duration
	AudioCard() string
	AudioControl() string
	DateFormat() string

	// Schedule returns the tick schedule of a category, e.g. "@every 2s".
	Schedule(name string) string

	FormatOrder() []string
	FormatSeparator() string
	FormatPadding() string

	// Load reads the configuration from the source.
	Load() error
}

const (
	BackendSysfs    = "sysfs"
	BackendDistatus = "distatus"
	BackendProcfs   = "procfs"
	BackendGopsutil = "gopsutil"
)
