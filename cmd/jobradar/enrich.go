package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelez-dev/jobradar/internal/aggregate"
	"github.com/avelez-dev/jobradar/internal/enrich"
	"github.com/avelez-dev/jobradar/internal/housing"
	"github.com/avelez-dev/jobradar/internal/model"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Normalize raw observations and recompute city aggregates",
	Long:  "Normalizes raw payloads for every enabled source into the jobs table, then recomputes the per-city daily stats and snapshots.",
	RunE:  runEnrich,
}

var enrichHousingCmd = &cobra.Command{
	Use:   "enrich-housing",
	Short: "Normalize raw Zillow rows into housing metrics",
	RunE:  runEnrichHousing,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(enrichHousingCmd)
}

func enabledSources(adzuna, jsearch bool) []model.Source {
	var sources []model.Source
	if adzuna {
		sources = append(sources, model.SourceAdzuna)
	}
	if jsearch {
		sources = append(sources, model.SourceJSearch)
	}
	return sources
}

func runEnrich(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	runDate := time.Now()
	enricher := enrich.NewEnricher(st, logger)

	for _, src := range enabledSources(cfg.Sources.Adzuna.Enabled, cfg.Sources.JSearch.Enabled) {
		n, err := enricher.Run(ctx, src, runDate)
		if err != nil {
			logger.Error("enrichment failed", "source", src, "error", err)
			os.Exit(1)
		}
		logger.Info("enrichment complete", "source", src, "processed", n)
	}

	if err := aggregate.New(st, logger).Run(ctx, runDate); err != nil {
		logger.Error("aggregation failed", "error", err)
		os.Exit(1)
	}
	return nil
}

func runEnrichHousing(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	loader := housing.NewLoader(st, logger)

	for metric := range cfg.Housing.Datasets {
		n, err := loader.Enrich(ctx, metric)
		if err != nil {
			logger.Error("housing enrichment failed", "metric", metric, "error", err)
			os.Exit(1)
		}
		logger.Info("housing metrics written", "metric", metric, "rows", n)
	}
	return nil
}
