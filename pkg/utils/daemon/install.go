// Package daemon installs dwmstatus as a systemd user service.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const unitName = "dwmstatus.service"

const unitTemplate = `[Unit]
Description=dwm status bar
PartOf=graphical-session.target
After=graphical-session.target

[Service]
ExecStart=%q run --config %q
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure

[Install]
WantedBy=graphical-session.target
`

// Unit renders the service unit for the given binary and config file.
func Unit(exePath, configPath string) string {
	return fmt.Sprintf(unitTemplate, exePath, configPath)
}

// Installer manages the user unit.
type Installer struct {
	// UnitDir is where the unit file is written.
	UnitDir string

	run func(name string, args ...string) error
}

// NewInstaller returns an installer for the current user's systemd
// instance.
func NewInstaller() (*Installer, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return &Installer{
		UnitDir: filepath.Join(dir, "systemd", "user"),
		run: func(name string, args ...string) error {
			out, err := exec.Command(name, args...).CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s %v: %w: %s", name, args, err, out)
			}
			return nil
		},
	}, nil
}

// UnitPath returns the unit file location.
func (i *Installer) UnitPath() string {
	return filepath.Join(i.UnitDir, unitName)
}

func (i *Installer) systemctl(args ...string) error {
	return i.run("systemctl", append([]string{"--user"}, args...)...)
}

// Install writes the unit for exePath and starts it.
func (i *Installer) Install(exePath, configPath string) error {
	exePath, err := filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the executable: %w", err)
	}
	logrus.Infof("executable path: %s", exePath)

	if err := os.MkdirAll(i.UnitDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", i.UnitDir, err)
	}

	path := i.UnitPath()
	if _, err := os.Stat(path); err == nil {
		logrus.Warnf("%s already exists, overwriting", path)
	}

	logrus.Infof("writing %s", path)
	if err := os.WriteFile(path, []byte(Unit(exePath, configPath)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The service inherits the display from the user manager.
	if err := i.systemctl("import-environment", "DISPLAY", "XAUTHORITY"); err != nil {
		logrus.WithError(err).Warn("failed to import DISPLAY into the user manager")
	}
	if err := i.systemctl("daemon-reload"); err != nil {
		return err
	}

	logrus.Infof("starting dwmstatus")
	return i.systemctl("enable", "--now", unitName)
}
