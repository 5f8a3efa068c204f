package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templateops/tsync/internal"
)

func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Update the system tree from the upstream template",
		Long: `Overwrite the sync paths with the upstream template's content. Every file
about to change is copied into a timestamped backup first. Uncommitted edits
inside the sync paths block the run unless --force is given.`,
		RunE: runSync,
	}

	cmd.Flags().Bool("dry-run", false, "Preview changes without writing anything")
	cmd.Flags().Bool("force", false, "Proceed even when sync paths have uncommitted edits")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) (err error) {
	// Result is always machine-readable JSON, even for failures the engine
	// did not anticipate. No stack traces reach the caller.
	defer func() {
		if r := recover(); r != nil {
			err = internal.WriteJSON(cmd.OutOrStdout(), syncFailure(fmt.Sprintf("unexpected failure: %v", r)))
		}
	}()

	eng, err := openEngine(cmd)
	if err != nil {
		return internal.WriteJSON(cmd.OutOrStdout(), syncFailure(err.Error()))
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	res := eng.executor.Sync(cmd.Context(), internal.SyncOptions{
		DryRun: dryRun,
		Force:  force,
	})
	return internal.WriteJSON(cmd.OutOrStdout(), res)
}

func syncFailure(msg string) *internal.SyncResult {
	return &internal.SyncResult{
		Status:        internal.StatusFailure,
		ChangedFiles:  []string{},
		VersionBefore: internal.Unknown.String(),
		VersionAfter:  internal.Unknown.String(),
		Error:         msg,
	}
}
