package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/avelez-dev/jobradar/internal/config"
	"github.com/avelez-dev/jobradar/internal/source"
	"github.com/avelez-dev/jobradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job market radar — track postings and cost of living by metro",
	Long:  "JobRadar pulls job postings from upstream APIs, tracks how long each one stays open, and rolls the results up into per-city statistics alongside Zillow housing data.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.DatabasePath)
}

// buildFetchers returns one fetcher per enabled source. All fetchers share
// the HTTP client; each gets its own limiter so a slow upstream does not
// stall the other.
func buildFetchers(cfg *config.Config, logger *slog.Logger) []source.Fetcher {
	httpClient := &http.Client{Timeout: cfg.Fetch.HTTPTimeout}
	newLimiter := func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(cfg.Fetch.PageDelay), 1)
	}

	var fetchers []source.Fetcher
	if cfg.Sources.Adzuna.Enabled {
		fetchers = append(fetchers, source.NewAdzunaFetcher(
			cfg.Sources.Adzuna.AppID, cfg.Sources.Adzuna.AppKey,
			cfg.Fetch.PerPage, httpClient, newLimiter()))
		logger.Info("registered source", "source", "adzuna")
	}
	if cfg.Sources.JSearch.Enabled {
		fetchers = append(fetchers, source.NewJSearchFetcher(
			cfg.Sources.JSearch.APIKey, httpClient, newLimiter()))
		logger.Info("registered source", "source", "jsearch")
	}
	return fetchers
}
