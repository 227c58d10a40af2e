package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
)

// ReplaceHousingRaw wipes and reloads the bronze rows for one housing
// metric. Each CSV row is stored as a column-name → value document, so the
// source file's headers survive verbatim into the raw tier.
func (s *Store) ReplaceHousingRaw(ctx context.Context, metric string, csvRows []map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replacing housing raw %s: %w", metric, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM housing_raw WHERE metric = ?`, metric); err != nil {
		return fmt.Errorf("replacing housing raw %s: %w", metric, err)
	}
	for i, row := range csvRows {
		doc, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("replacing housing raw %s: encoding row %d: %w", metric, i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO housing_raw (metric, row_num, row_json) VALUES (?, ?, ?)`,
			metric, i, string(doc)); err != nil {
			return fmt.Errorf("replacing housing raw %s: row %d: %w", metric, i, err)
		}
	}
	return tx.Commit()
}

// HousingRaw returns the bronze rows for one metric in load order.
func (s *Store) HousingRaw(ctx context.Context, metric string) ([]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM housing_raw WHERE metric = ? ORDER BY row_num`, metric)
	if err != nil {
		return nil, fmt.Errorf("querying housing raw %s: %w", metric, err)
	}
	defer rows.Close()

	var out []map[string]string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning housing raw row: %w", err)
		}
		row := make(map[string]string)
		if err := json.Unmarshal([]byte(doc), &row); err != nil {
			return nil, fmt.Errorf("parsing housing raw row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InsertHousingMetrics appends enriched rows to the silver housing table.
func (s *Store) InsertHousingMetrics(ctx context.Context, metrics []model.HousingMetric) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("inserting housing metrics: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO housing_metrics (region_id, size_rank, region_name, state_code,
				data_source, metric_type, metric_value, date_recorded, processed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.RegionID, m.SizeRank, m.RegionName, m.StateCode,
			m.DataSource, m.MetricType, m.Value, m.DateRecorded,
			m.ProcessedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("inserting housing metric for %s: %w", m.RegionName, err)
		}
	}
	return tx.Commit()
}

// HousingMetrics returns every silver housing row for one metric type.
func (s *Store) HousingMetrics(ctx context.Context, metricType string) ([]model.HousingMetric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT region_id, size_rank, region_name, state_code, data_source,
			metric_type, metric_value, date_recorded
		 FROM housing_metrics WHERE metric_type = ? ORDER BY size_rank`, metricType)
	if err != nil {
		return nil, fmt.Errorf("querying housing metrics: %w", err)
	}
	defer rows.Close()

	var out []model.HousingMetric
	for rows.Next() {
		var m model.HousingMetric
		if err := rows.Scan(&m.RegionID, &m.SizeRank, &m.RegionName, &m.StateCode,
			&m.DataSource, &m.MetricType, &m.Value, &m.DateRecorded); err != nil {
			return nil, fmt.Errorf("scanning housing metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
