package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/templateops/tsync/internal"
)

func NewCheckUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Check whether a newer template version is available upstream",
		Long: `Fetch the upstream remote and compare its template version against the
local one. Read-only: the working tree is never modified. Network problems
are reported in the JSON result, not as a command failure.`,
		RunE: runCheckUpdate,
	}

	return cmd
}

func runCheckUpdate(cmd *cobra.Command, _ []string) error {
	eng, err := openEngine(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), eng.cfg.FetchTimeout())
	defer cancel()

	res := eng.comparator.CheckUpdate(ctx)
	return internal.WriteJSON(cmd.OutOrStdout(), res)
}
