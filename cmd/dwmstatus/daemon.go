package main

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/statusbar/dwmstatus/pkg/daemon"
	"github.com/statusbar/dwmstatus/pkg/version"
)

const (
	maxLogMB   = 10
	maxBackups = 3
)

// NewRunCommand .
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Aliases: []string{"daemon"},
		Short:   "Run the daemon in the foreground",
		Long: `Run the daemon in the foreground.

Set DWMSTATUS_CONSOLE=1 to print lines to stdout instead of the X root window.`,
		GroupID: gDaemon,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd)
		},
	}
}

func runDaemon(cmd *cobra.Command) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	// The config file only decides the level when the flag was not given.
	if !cmd.Flags().Changed("log-level") && conf.LogLevel() != "" {
		logLevel = conf.LogLevel()
		if err := setupLogger(); err != nil {
			return err
		}
	}

	if f := conf.LogFile(); f != "" {
		logrus.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   f,
			MaxSize:    maxLogMB,
			MaxBackups: maxBackups,
		}))
	}

	logrus.WithFields(logrus.Fields{
		"version": version.Version,
		"commit":  version.GitCommit,
	}).Info("dwmstatus daemon starting")

	return daemon.Serve(context.Background(), conf)
}
