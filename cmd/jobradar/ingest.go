package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelez-dev/jobradar/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch job postings from all enabled sources",
	Long:  "Runs one ingestion cycle per (city, role, source) combination, reconciling each batch against prior observations. Safe to re-run within a day.",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	fetchers := buildFetchers(cfg, logger)
	if len(fetchers) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runDate := time.Now()
	totalNew := 0
	cycles := 0
	failures := 0

	for _, f := range fetchers {
		runner := ingest.NewRunner(f, st, cfg.Fetch.MaxPages, logger)
		for _, city := range cfg.Cities {
			for _, role := range cfg.Roles {
				if ctx.Err() != nil {
					logger.Warn("interrupted, stopping after completed cycles")
					return ctx.Err()
				}
				n, err := runner.RunCycle(ctx, city, role, runDate)
				cycles++
				if err != nil {
					// A failed cycle does not abort the run; the other
					// (city, role, source) combinations are independent.
					failures++
					logger.Error("cycle failed",
						"source", f.Source(), "city", city, "role", role, "error", err)
					continue
				}
				totalNew += n
			}
		}
	}

	logger.Info("ingest complete",
		"cycles", cycles, "failed", failures, "new_jobs", totalNew,
		"run_date", runDate.Format("2006-01-02"))
	return nil
}
