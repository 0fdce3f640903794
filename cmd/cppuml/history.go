package main

import (
	"fmt"
	"time"

	"cppuml/internal/core/config"
	"cppuml/internal/data/history"

	"github.com/spf13/cobra"
)

func historyCmd(opts *options) *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs of the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			cfg, base, err := loadConfig(cmd, *opts)
			if err != nil {
				return err
			}
			paths, err := config.ResolvePaths(cfg, base)
			if err != nil {
				return err
			}
			store, err := history.Open(paths.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.LoadRuns(cfg.Project, time.Now().Add(-since))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 30*24*time.Hour, "Only show runs newer than this")
	return cmd
}
