package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statusbar/dwmstatus/pkg/daemon"
	"github.com/statusbar/dwmstatus/pkg/state"
	"github.com/statusbar/dwmstatus/pkg/version"
)

// NewVersionCommand .
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		GroupID: gBasic,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Version, version.GitCommit)
			return nil
		},
	}
}

// NewOnceCommand .
func NewOnceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Sample every source once and print the status line",
		Long: `Sample every source once and print the status line to stdout.

No daemon is needed and nothing is written to the X root window.`,
		GroupID: gBasic,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}

			deps := daemon.NewSources(conf)
			defer deps.Close()

			d, err := daemon.New(conf, deps)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), d.Once())
			return nil
		},
	}
}

// NewRefreshCommand .
func NewRefreshCommand() *cobra.Command {
	valid := make([]string, 0, len(state.Categories))
	for _, c := range state.Categories {
		valid = append(valid, c.String())
	}

	return &cobra.Command{
		Use:   "refresh [category...]",
		Short: "Ask the daemon to re-sample now",
		Long: fmt.Sprintf(`Ask the daemon to re-sample the given categories now, or all of them
when none is given. The status line is redrawn once the results are in.

Categories: %s

Useful from a volume key binding:
  amixer -q set Master 5%%+ && dwmstatus refresh volume`, strings.Join(valid, ", ")),
		GroupID:   gBasic,
		ValidArgs: valid,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			accepted, err := c.Refresh(args...)
			if err != nil {
				return fmt.Errorf("failed to refresh: %w", err)
			}

			cmd.Printf("refreshing %s\n", strings.Join(accepted, ", "))
			return nil
		},
	}
}
