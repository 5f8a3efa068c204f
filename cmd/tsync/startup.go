package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/templateops/tsync/internal"
)

func NewStartupCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "startup-check",
		Short: "Best-effort update check with a bounded timeout",
		Long: `Like check-update, but intended for a startup sequence that must always
complete: the check runs under a hard timeout and any failure whatsoever
degrades to {"update_available": false}.`,
		RunE: runStartupCheck,
	}

	cmd.Flags().Duration("timeout", 0, "Override the configured startup timeout")
	return cmd
}

func runStartupCheck(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	res := startupCheck(cmd, timeout)
	return internal.WriteJSON(cmd.OutOrStdout(), res)
}

func startupCheck(cmd *cobra.Command, timeout time.Duration) (out internal.StartupResult) {
	defer func() {
		if recover() != nil {
			out = internal.StartupResult{}
		}
	}()

	eng, err := openEngine(cmd)
	if err != nil {
		return internal.StartupResult{}
	}

	return eng.comparator.StartupCheck(cmd.Context(), timeout)
}
