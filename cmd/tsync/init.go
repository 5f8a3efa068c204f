package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/templateops/tsync/internal"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default sync configuration",
		Long:  `Create .tsync/config.yaml in the deployment root with default settings.`,
		RunE:  runInit,
	}

	cmd.Flags().String("remote-url", "", "Upstream template repository URL")
	cmd.Flags().String("ref", "", "Upstream branch to track")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	path := internal.ConfigPath(root)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("already initialized at %s", path)
	}

	cfg := internal.DefaultConfig()
	if url, _ := cmd.Flags().GetString("remote-url"); url != "" {
		cfg.Remote.URL = url
	}
	if ref, _ := cmd.Flags().GetString("ref"); ref != "" {
		cfg.Remote.Ref = ref
	}

	if err := internal.SaveConfig(root, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized sync config at %s\n", path)
	return nil
}
