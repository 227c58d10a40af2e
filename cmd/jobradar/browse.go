package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelez-dev/jobradar/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse normalized jobs interactively (TUI)",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	jobs, err := st.AllJobs(context.Background())
	if err != nil {
		logger.Error("failed to load jobs", "error", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs in the database yet. Run `jobradar ingest` then `jobradar enrich` first.")
		return nil
	}

	return browse.Run(jobs)
}
