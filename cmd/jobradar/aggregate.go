package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelez-dev/jobradar/internal/aggregate"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Recompute city aggregates from the jobs table",
	Long:  "Standalone recompute of per-city daily stats and snapshots. Idempotent: re-running for the same day overwrites the same rows.",
	RunE:  runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := aggregate.New(st, logger).Run(context.Background(), time.Now()); err != nil {
		logger.Error("aggregation failed", "error", err)
		os.Exit(1)
	}
	return nil
}
