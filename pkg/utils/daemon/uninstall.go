package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
)

// Uninstall stops the service and removes the unit file.
func (i *Installer) Uninstall() error {
	logrus.Infof("stopping dwmstatus")

	if err := i.systemctl("disable", "--now", unitName); err != nil {
		logrus.WithError(err).Warn("failed to stop dwmstatus")
	}

	path := i.UnitPath()
	logrus.Infof("removing %s", path)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return i.systemctl("daemon-reload")
}
