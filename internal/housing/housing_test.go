package housing

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/avelez-dev/jobradar/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const zoriCSV = `RegionID,SizeRank,RegionName,RegionType,StateName,2026-05-31,2026-06-30,2026-07-31
394463,3,"Chicago, IL",msa,IL,1850.2,1860.7,1875.3
394532,13,"Detroit, MI",msa,MI,1320.5,1330.1,
102001,0,United States,country,,1900.0,1910.0,1920.0
17426,850,Cook County,county,IL,1800.0,1810.0,1820.0
`

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zori.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestIngestCSVLoadsAllRows(t *testing.T) {
	s := newTestStore(t)
	l := NewLoader(s, testLogger())
	ctx := context.Background()

	n, err := l.IngestCSV(ctx, writeCSV(t, zoriCSV), "zori")
	if err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}
	if n != 4 {
		t.Errorf("loaded %d rows, want 4 (region filter happens at enrich time)", n)
	}

	rows, err := s.HousingRaw(ctx, "zori")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("raw rows = %d, want 4", len(rows))
	}
	if rows[0]["RegionName"] != "Chicago, IL" || rows[0]["2026-07-31"] != "1875.3" {
		t.Errorf("first row = %v", rows[0])
	}
}

func TestIngestCSVMissingFile(t *testing.T) {
	s := newTestStore(t)
	l := NewLoader(s, testLogger())

	if _, err := l.IngestCSV(context.Background(), "/does/not/exist.csv", "zori"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnrichFiltersAndPicksLatestColumn(t *testing.T) {
	s := newTestStore(t)
	l := NewLoader(s, testLogger())
	ctx := context.Background()

	if _, err := l.IngestCSV(ctx, writeCSV(t, zoriCSV), "zori"); err != nil {
		t.Fatal(err)
	}

	n, err := l.Enrich(ctx, "zori")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	// Country and county rows dropped; Detroit's latest month is blank.
	if n != 1 {
		t.Errorf("enriched %d rows, want 1", n)
	}

	metrics, err := s.HousingMetrics(ctx, "rent_index_latest")
	if err != nil {
		t.Fatal(err)
	}
	if len(metrics) != 1 {
		t.Fatalf("metrics = %d, want 1", len(metrics))
	}
	m := metrics[0]
	if m.RegionName != "Chicago, IL" || m.Value != 1875.3 {
		t.Errorf("metric = %+v", m)
	}
	if m.DateRecorded != "2026-07-31" {
		t.Errorf("DateRecorded = %q, want latest column 2026-07-31", m.DateRecorded)
	}
	if m.DataSource != "zillow_zori" {
		t.Errorf("DataSource = %q", m.DataSource)
	}
	if m.RegionID != 394463 || m.SizeRank != 3 {
		t.Errorf("ids = %d/%d", m.RegionID, m.SizeRank)
	}
}

func TestEnrichEmptyBronzeIsNoop(t *testing.T) {
	s := newTestStore(t)
	l := NewLoader(s, testLogger())

	n, err := l.Enrich(context.Background(), "zori")
	if err != nil {
		t.Fatalf("Enrich on empty bronze: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
}

func TestLatestDateColumn(t *testing.T) {
	row := map[string]string{
		"RegionID":   "1",
		"2025-12-31": "1.0",
		"2026-01-31": "2.0",
		"2026-02-28": "3.0",
		"NotADate":   "x",
	}
	if got := latestDateColumn(row); got != "2026-02-28" {
		t.Errorf("latestDateColumn = %q, want 2026-02-28", got)
	}
	if got := latestDateColumn(map[string]string{"RegionID": "1"}); got != "" {
		t.Errorf("latestDateColumn = %q, want empty", got)
	}
}
