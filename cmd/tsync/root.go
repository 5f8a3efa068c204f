package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tsync",
		Short: "Keep a deployed template tree in sync with its upstream",
		Long: `tsync updates the system tree of a deployed template from its upstream
repository. Sync is a surgical, path-bounded overwrite with a mandatory
pre-overwrite backup; user-owned paths are never touched.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewInitCmd(),
		NewCheckUpdateCmd(),
		NewSyncCmd(),
		NewStartupCheckCmd(),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("root", "", "Deployment root (defaults to the working directory)")
	cmd.PersistentFlags().Bool("quiet", false, "Only log errors")
}
