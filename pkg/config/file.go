package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/statusbar/dwmstatus/pkg/state"
)

// EnvPrefix is prepended to environment overrides: DWMSTATUS_CONSOLE=1,
// DWMSTATUS_NETWORK_INTERFACE=wlan0.
const EnvPrefix = "DWMSTATUS"

var _ Config = &File{}

// RawFileConfig mirrors the configuration file.
type RawFileConfig struct {
	Console   bool              `mapstructure:"console" json:"console"`
	Display   string            `mapstructure:"display" json:"display"`
	Socket    string            `mapstructure:"socket" json:"socket"`
	Log       LogConfig         `mapstructure:"log" json:"log"`
	Batteries []string          `mapstructure:"batteries" json:"batteries"`
	Battery   BatteryConfig     `mapstructure:"battery" json:"battery"`
	Network   NetworkConfig     `mapstructure:"network" json:"network"`
	Audio     AudioConfig       `mapstructure:"audio" json:"audio"`
	Date      DateConfig        `mapstructure:"date" json:"date"`
	Schedule  map[string]string `mapstructure:"schedule" json:"schedule"`
	Format    FormatConfig      `mapstructure:"format" json:"format"`
}

type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file,omitempty"`
}

type BatteryConfig struct {
	Backend string `mapstructure:"backend" json:"backend"`
}

type NetworkConfig struct {
	Interface string        `mapstructure:"interface" json:"interface,omitempty"`
	Backend   string        `mapstructure:"backend" json:"backend"`
	Devices   bool          `mapstructure:"devices" json:"devices"`
	MaxGap    time.Duration `mapstructure:"max_gap" json:"maxGap"`
}

type AudioConfig struct {
	Card    string `mapstructure:"card" json:"card"`
	Control string `mapstructure:"control" json:"control"`
}

type DateConfig struct {
	Format string `mapstructure:"format" json:"format"`
}

type FormatConfig struct {
	Order     []string `mapstructure:"order" json:"order"`
	Separator string   `mapstructure:"separator" json:"separator"`
	Padding   string   `mapstructure:"padding" json:"padding"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("console", false)
	v.SetDefault("display", "")
	v.SetDefault("socket", DefaultSocketPath())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("batteries", []string{"BAT0", "BAT1", "BAT2"})
	v.SetDefault("battery.backend", BackendSysfs)

	v.SetDefault("network.interface", "")
	v.SetDefault("network.backend", BackendProcfs)
	v.SetDefault("network.devices", true)
	v.SetDefault("network.max_gap", 30*time.Second)

	v.SetDefault("audio.card", "default")
	v.SetDefault("audio.control", "Master")

	v.SetDefault("date.format", "2006.01.02 15:04")

	v.SetDefault("schedule.network", "@every 2s")
	v.SetDefault("schedule.date", "@every 10s")
	v.SetDefault("schedule.battery", "@every 5s")
	v.SetDefault("schedule.status", "@every 1s")

	v.SetDefault("format.order", []string{"network", "volume", "date", "battery"})
	v.SetDefault("format.separator", " | ")
	v.SetDefault("format.padding", " ")
}

// DefaultPath is $XDG_CONFIG_HOME/dwmstatus/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dwmstatus", "config.yaml")
}

// DefaultSocketPath is in $XDG_RUNTIME_DIR, or /tmp when unset.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "dwmstatus.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("dwmstatus-%d.sock", os.Getuid()))
}

// File is a Config read from a file plus environment overrides.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// NewFile loads the configuration at configPath. A missing file yields
// the defaults.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFileFromConfig wraps an already decoded configuration.
func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}
	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// Path returns the configuration file path.
func (f *File) Path() string {
	return f.filepath
}

// Load reads the file and environment. On error the previous
// configuration stays in effect.
func (f *File) Load() error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case f.filepath == "":
	case !fileExists(f.filepath):
		logrus.WithField("path", f.filepath).Debug("config file not found, using defaults")
	default:
		v.SetConfigFile(f.filepath)
		if err := v.ReadInConfig(); err != nil {
			return pkgerrors.Wrapf(err, "failed to read config file %s", f.filepath)
		}
	}

	conf := RawFileConfig{}
	if err := v.Unmarshal(&conf); err != nil {
		return pkgerrors.Wrapf(err, "failed to decode config %s", f.filepath)
	}
	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config %s", f.filepath)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c = &conf
	return nil
}

// Validate checks enumerated values.
func (c *RawFileConfig) Validate() error {
	switch c.Battery.Backend {
	case BackendSysfs, BackendDistatus:
	default:
		return fmt.Errorf("battery.backend %q: %w", c.Battery.Backend, ErrInvalidBackend)
	}
	switch c.Network.Backend {
	case BackendProcfs, BackendGopsutil:
	default:
		return fmt.Errorf("network.backend %q: %w", c.Network.Backend, ErrInvalidBackend)
	}
	for _, name := range c.Format.Order {
		if _, err := state.ParseCategory(name); err != nil {
			return fmt.Errorf("format.order: %v: %w", err, ErrInvalidCategory)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Raw returns a copy of the decoded configuration.
func (f *File) Raw() RawFileConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c := *f.c
	c.Batteries = append([]string(nil), f.c.Batteries...)
	c.Format.Order = append([]string(nil), f.c.Format.Order...)
	c.Schedule = make(map[string]string, len(f.c.Schedule))
	for k, s := range f.c.Schedule {
		c.Schedule[k] = s
	}
	return c
}

func (f *File) read(fn func(c *RawFileConfig)) {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn(f.c)
}

func (f *File) Console() (b bool) {
	f.read(func(c *RawFileConfig) { b = c.Console })
	return
}

func (f *File) Display() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Display })
	return
}

func (f *File) Socket() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Socket })
	return
}

func (f *File) LogLevel() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Log.Level })
	return
}

func (f *File) LogFile() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Log.File })
	return
}

func (f *File) Batteries() (ids []string) {
	f.read(func(c *RawFileConfig) { ids = append(ids, c.Batteries...) })
	return
}

func (f *File) BatteryBackend() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Battery.Backend })
	return
}

func (f *File) NetworkInterface() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Network.Interface })
	return
}

func (f *File) NetworkBackend() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Network.Backend })
	return
}

func (f *File) NetworkDevices() (b bool) {
	f.read(func(c *RawFileConfig) { b = c.Network.Devices })
	return
}

func (f *File) NetworkMaxGap() (d time.Duration) {
	f.read(func(c *RawFileConfig) { d = c.Network.MaxGap })
	return
}

func (f *File) AudioCard() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Audio.Card })
	return
}

func (f *File) AudioControl() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Audio.Control })
	return
}

func (f *File) DateFormat() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Date.Format })
	return
}

func (f *File) Schedule(name string) (s string) {
	f.read(func(c *RawFileConfig) { s = c.Schedule[name] })
	return
}

func (f *File) FormatOrder() (order []string) {
	f.read(func(c *RawFileConfig) { order = append(order, c.Format.Order...) })
	return
}

func (f *File) FormatSeparator() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Format.Separator })
	return
}

func (f *File) FormatPadding() (s string) {
	f.read(func(c *RawFileConfig) { s = c.Format.Padding })
	return
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"console":          f.Console(),
		"display":          f.Display(),
		"socket":           f.Socket(),
		"batteries":        f.Batteries(),
		"batteryBackend":   f.BatteryBackend(),
		"networkInterface": f.NetworkInterface(),
		"networkBackend":   f.NetworkBackend(),
		"networkDevices":   f.NetworkDevices(),
		"audioCard":        f.AudioCard(),
		"audioControl":     f.AudioControl(),
		"dateFormat":       f.DateFormat(),
		"formatOrder":      f.FormatOrder(),
	}
}
