package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/templateops/tsync/internal"
)

// engine bundles the wired-up components for a single invocation. Everything
// is computed fresh each run; nothing is cached across processes.
type engine struct {
	root       string
	cfg        *internal.Config
	comparator *internal.Comparator
	executor   *internal.Executor
}

func openEngine(cmd *cobra.Command) (*engine, error) {
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := internal.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := internal.OpenRepo(root)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	store := internal.NewVersionStore(root)
	backup := internal.NewBackupManager(root)

	return &engine{
		root:       root,
		cfg:        cfg,
		comparator: internal.NewComparator(repo, store, cfg, logger),
		executor:   internal.NewExecutor(repo, store, backup, cfg, root, logger),
	}, nil
}
