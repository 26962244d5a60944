package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/statusbar/dwmstatus/pkg/types"
)

// NewStatusCommand .
func NewStatusCommand() *cobra.Command {
	var (
		raw      bool
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Get the daemon's current status line",
		GroupID: gBasic,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			st, err := c.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			if jsonMode {
				b, err := json.MarshalIndent(st, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), st.Line)
				return nil
			}

			printStatus(cmd, st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print only the status line")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "print the full status as JSON")
	cmd.MarkFlagsMutuallyExclusive("raw", "json")

	return cmd
}

func printStatus(cmd *cobra.Command, st *types.Status) {
	cmd.Println(bold("Status line:"))
	if st.Emitted {
		cmd.Printf("  %q\n", st.Line)
	} else {
		cmd.Println("  (nothing written yet)")
	}
	cmd.Printf("  Up since: %s\n", st.Started.Format(time.DateTime))
	cmd.Printf("  Writes: %d written, %d unchanged, %d failed\n",
		st.Writes.Written, st.Writes.Suppressed, st.Writes.Failed)
	cmd.Println()

	cmd.Println(bold("Sources:"))
	for _, f := range st.Fields {
		cmd.Printf("  %s %-8s %s\n", bool2Text(!f.Stale && f.Error == ""), f.Category, f.Display)
		if f.Error != "" {
			cmd.Printf("      %s\n", color.RedString(f.Error))
		}
		if !f.Updated.IsZero() {
			cmd.Printf("      last good: %s\n", f.Updated.Format(time.DateTime))
		}
		if f.Stale && !f.Failed.IsZero() {
			cmd.Printf("      failing since: %s\n", color.YellowString(f.Failed.Format(time.DateTime)))
		}
	}
}
