package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	daemonutils "github.com/statusbar/dwmstatus/pkg/utils/daemon"
)

var gInstallation = "Installation:"

func init() {
	commandGroups = append(commandGroups, gInstallation)
}

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install dwmstatus as a systemd user service",
		GroupID: gInstallation,
		Long: `Install dwmstatus as a systemd user service.

The unit is bound to graphical-session.target and picks up DISPLAY from
the user manager. Run this from inside your X session. If you start
dwmstatus from .xinitrc instead, you do not need this.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exePath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to get the path to the current executable: %w", err)
			}

			i, err := daemonutils.NewInstaller()
			if err != nil {
				return err
			}
			if err := i.Install(exePath, configPath); err != nil {
				return fmt.Errorf("failed to install daemon: %w", err)
			}

			logrus.Infof("installation succeeded")
			cmd.Printf("The service runs %s. If you move this binary, run `dwmstatus install' again.\n", exePath)
			return nil
		},
	}
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Stop and remove the systemd user service",
		GroupID: gInstallation,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			i, err := daemonutils.NewInstaller()
			if err != nil {
				return err
			}
			if err := i.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall daemon: %w", err)
			}
			logrus.Infof("uninstallation succeeded")
			return nil
		},
	}
}
