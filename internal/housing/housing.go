// Package housing loads Zillow index CSV extracts into the bronze tier and
// enriches them into the silver housing-metrics table. The raw load is a
// wholesale replace that keeps the file's column names verbatim; renaming
// happens only during enrichment.
package housing

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
	"github.com/avelez-dev/jobradar/internal/store"
)

// metricTypes names the silver metric for each known dataset.
var metricTypes = map[string]string{
	"zori": "rent_index_latest",
	"zhvi": "home_value_latest",
}

// Loader moves housing CSVs through the bronze and silver tiers.
type Loader struct {
	store  *store.Store
	logger *slog.Logger
}

func NewLoader(st *store.Store, logger *slog.Logger) *Loader {
	return &Loader{store: st, logger: logger}
}

// IngestCSV replaces the bronze rows for metric with the file's contents.
// Returns the number of data rows loaded.
func (l *Loader) IngestCSV(ctx context.Context, path, metric string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ingesting %s csv: %w", metric, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("ingesting %s csv: %w", metric, err)
	}
	if len(records) < 1 {
		return 0, fmt.Errorf("ingesting %s csv: file has no header row", metric)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	if err := l.store.ReplaceHousingRaw(ctx, metric, rows); err != nil {
		return 0, err
	}
	l.logger.Info("loaded housing csv", "metric", metric, "rows", len(rows))
	return len(rows), nil
}

// Enrich reads the bronze rows for metric, keeps metro-area rows only,
// picks the latest date column and appends one silver row per region.
func (l *Loader) Enrich(ctx context.Context, metric string) (int, error) {
	rows, err := l.store.HousingRaw(ctx, metric)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		l.logger.Info("no housing rows to enrich", "metric", metric)
		return 0, nil
	}

	latest := latestDateColumn(rows[0])
	if latest == "" {
		return 0, fmt.Errorf("enriching %s: no date columns found", metric)
	}

	metricType := metricTypes[metric]
	if metricType == "" {
		metricType = metric + "_latest"
	}

	now := time.Now().UTC()
	var metrics []model.HousingMetric
	for _, row := range rows {
		if row["RegionType"] != "msa" {
			continue
		}
		value, err := strconv.ParseFloat(row[latest], 64)
		if err != nil {
			// Regions with no observation for the latest month are blank.
			continue
		}
		regionID, _ := strconv.ParseInt(row["RegionID"], 10, 64)
		sizeRank, _ := strconv.ParseInt(row["SizeRank"], 10, 64)
		metrics = append(metrics, model.HousingMetric{
			RegionID:     regionID,
			SizeRank:     sizeRank,
			RegionName:   row["RegionName"],
			StateCode:    row["StateName"],
			DataSource:   "zillow_" + metric,
			MetricType:   metricType,
			Value:        value,
			DateRecorded: latest,
			ProcessedAt:  now,
		})
	}

	if err := l.store.InsertHousingMetrics(ctx, metrics); err != nil {
		return 0, err
	}
	l.logger.Info("enriched housing rows", "metric", metric, "rows", len(metrics), "date", latest)
	return len(metrics), nil
}

// latestDateColumn finds the most recent YYYY-MM-DD column name in a row.
// Zillow files carry one column per month; lexical order is date order.
func latestDateColumn(row map[string]string) string {
	latest := ""
	for col := range row {
		if len(col) == 10 && col[4] == '-' && col[7] == '-' && col > latest {
			latest = col
		}
	}
	return latest
}
