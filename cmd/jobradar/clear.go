package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var (
	clearBronze bool
	clearSilver bool
	clearGold   bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe derived tables for reprocessing",
	Long:  "Clears the silver and gold tables so enrich/aggregate can rebuild them from raw observations. --bronze also wipes the raw tier; use it only when re-ingesting from scratch.",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearBronze, "bronze", false, "also wipe raw observations and call records")
	clearCmd.Flags().BoolVar(&clearSilver, "silver", false, "wipe normalized jobs and housing metrics")
	clearCmd.Flags().BoolVar(&clearGold, "gold", false, "wipe city stats and snapshots")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	// No tier flags means the common reprocessing case: silver + gold.
	if !clearBronze && !clearSilver && !clearGold {
		clearSilver, clearGold = true, true
	}

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
	if clearBronze {
		if err := st.ClearBronze(ctx); err != nil {
			logger.Error("failed to clear bronze tier", "error", err)
			os.Exit(1)
		}
		logger.Info("bronze tier cleared")
	}
	if clearSilver {
		if err := st.ClearSilver(ctx); err != nil {
			logger.Error("failed to clear silver tier", "error", err)
			os.Exit(1)
		}
		logger.Info("silver tier cleared")
	}
	if clearGold {
		if err := st.ClearGold(ctx); err != nil {
			logger.Error("failed to clear gold tier", "error", err)
			os.Exit(1)
		}
		logger.Info("gold tier cleared")
	}
	return nil
}
