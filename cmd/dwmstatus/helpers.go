package main

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/client"
	"github.com/statusbar/dwmstatus/pkg/config"
	"github.com/statusbar/dwmstatus/pkg/version"
)

// loadConfig reads the config file and applies the command line
// overrides.
func loadConfig() (*config.File, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}
	if unixSocketPath != "" {
		raw := conf.Raw()
		raw.Socket = unixSocketPath
		conf = config.NewFileFromConfig(&raw, configPath)
	}
	return conf, nil
}

func newAPIClient() (*client.Client, error) {
	socket := unixSocketPath
	if socket == "" {
		conf, err := config.NewFile(configPath)
		if err != nil {
			return nil, err
		}
		socket = conf.Socket()
	}
	c := client.NewClient(socket)
	warnVersionMismatch(c)
	return c, nil
}

func warnVersionMismatch(c *client.Client) {
	v, err := c.GetVersion()
	if err != nil {
		return
	}
	if v.Version != version.Version {
		logrus.WithFields(logrus.Fields{
			"clientVersion": version.Version,
			"daemonVersion": v.Version,
		}).Warn("version mismatch between client and daemon, restart the daemon after upgrading")
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
