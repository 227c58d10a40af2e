package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelez-dev/jobradar/internal/housing"
)

var ingestHousingCmd = &cobra.Command{
	Use:   "ingest-housing",
	Short: "Load Zillow CSV datasets into the raw tier",
	Long:  "Reads each CSV listed under housing.datasets in the config and replaces the raw rows for that metric.",
	RunE:  runIngestHousing,
}

func init() {
	rootCmd.AddCommand(ingestHousingCmd)
}

func runIngestHousing(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if len(cfg.Housing.Datasets) == 0 {
		logger.Error("no housing datasets configured")
		os.Exit(1)
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	loader := housing.NewLoader(st, logger)

	for metric, path := range cfg.Housing.Datasets {
		rows, err := loader.IngestCSV(ctx, path, metric)
		if err != nil {
			logger.Error("housing ingest failed", "metric", metric, "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("housing dataset loaded", "metric", metric, "rows", rows)
	}
	return nil
}
