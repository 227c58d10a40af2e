package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func rawJob(id, title string) model.RawJob {
	payload, _ := json.Marshal(map[string]string{"title": title})
	return model.RawJob{JobID: id, Payload: payload}
}

func TestObservationInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := day("2026-08-01")

	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("j1", "Data Analyst"), d); err != nil {
		t.Fatalf("InsertObservation: %v", err)
	}

	obs, err := s.GetObservation(ctx, model.SourceAdzuna, "j1")
	if err != nil {
		t.Fatalf("GetObservation: %v", err)
	}
	if obs == nil {
		t.Fatal("expected observation, got nil")
	}
	if !obs.FirstSeen.Equal(d) || !obs.LastSeen.Equal(d) {
		t.Errorf("FirstSeen=%v LastSeen=%v, want both %v", obs.FirstSeen, obs.LastSeen, d)
	}
	if obs.TimesSeen != 1 {
		t.Errorf("TimesSeen = %d, want 1", obs.TimesSeen)
	}
}

func TestGetObservationUnknownReturnsNil(t *testing.T) {
	s := newTestStore(t)

	obs, err := s.GetObservation(context.Background(), model.SourceAdzuna, "nope")
	if err != nil {
		t.Fatalf("GetObservation: %v", err)
	}
	if obs != nil {
		t.Errorf("expected nil for unknown id, got %+v", obs)
	}
}

func TestTouchObservationAdvancesDayAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d1 := day("2026-08-01")
	d2 := day("2026-08-02")

	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("j1", "v1"), d1); err != nil {
		t.Fatalf("InsertObservation: %v", err)
	}
	if err := s.TouchObservation(ctx, model.SourceAdzuna, rawJob("j1", "v2"), d2); err != nil {
		t.Fatalf("TouchObservation: %v", err)
	}

	obs, err := s.GetObservation(ctx, model.SourceAdzuna, "j1")
	if err != nil {
		t.Fatalf("GetObservation: %v", err)
	}
	if !obs.FirstSeen.Equal(d1) {
		t.Errorf("FirstSeen changed to %v, want %v", obs.FirstSeen, d1)
	}
	if !obs.LastSeen.Equal(d2) {
		t.Errorf("LastSeen = %v, want %v", obs.LastSeen, d2)
	}
	if obs.TimesSeen != 2 {
		t.Errorf("TimesSeen = %d, want 2", obs.TimesSeen)
	}
	var got map[string]string
	if err := json.Unmarshal(obs.Payload, &got); err != nil || got["title"] != "v2" {
		t.Errorf("payload not replaced: %s", obs.Payload)
	}
}

func TestJobIDsSeenOn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d1 := day("2026-08-01")
	d2 := day("2026-08-02")

	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("old", "x"), d1); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("today", "x"), d2); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertObservation(ctx, model.SourceJSearch, rawJob("other-source", "x"), d2); err != nil {
		t.Fatal(err)
	}

	seen, err := s.JobIDsSeenOn(ctx, model.SourceAdzuna, d2)
	if err != nil {
		t.Fatalf("JobIDsSeenOn: %v", err)
	}
	if len(seen) != 1 || !seen["today"] {
		t.Errorf("seen = %v, want only {today}", seen)
	}
}

func TestUpsertCallRecordAccumulatesRetrieved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := day("2026-08-01")

	rec := model.CallRecord{
		RunDate: d, City: "Chicago, IL", Role: "data analyst", Source: model.SourceAdzuna,
		PagesFetched: 2, APICount: 100, APIMeanSalary: 90000, JobsRetrieved: 10,
	}
	if err := s.UpsertCallRecord(ctx, rec); err != nil {
		t.Fatalf("first UpsertCallRecord: %v", err)
	}

	rec.PagesFetched = 3
	rec.JobsRetrieved = 5
	if err := s.UpsertCallRecord(ctx, rec); err != nil {
		t.Fatalf("second UpsertCallRecord: %v", err)
	}

	got, err := s.GetCallRecord(ctx, d, "Chicago, IL", "data analyst", model.SourceAdzuna)
	if err != nil {
		t.Fatalf("GetCallRecord: %v", err)
	}
	if got == nil {
		t.Fatal("expected call record")
	}
	if got.JobsRetrieved != 15 {
		t.Errorf("JobsRetrieved = %d, want accumulated 15", got.JobsRetrieved)
	}
	if got.PagesFetched != 3 {
		t.Errorf("PagesFetched = %d, want overwritten 3", got.PagesFetched)
	}
}

func testJob(id string, d time.Time) model.NormalizedJob {
	return model.NormalizedJob{
		Source: model.SourceAdzuna, JobID: id,
		Title: "Data Analyst", Company: "Acme", City: "Chicago", StateCode: "IL",
		SalaryMin: 70000, SalaryMax: 90000, HasSalary: true,
		FirstSeen: d, LastSeen: d, TimesSeen: 1, IsActive: true,
		Seniority: model.SeniorityMid, JobType: "full-time",
		ProcessedAt: time.Now().UTC(),
	}
}

func TestUpsertNormalizedJobPreservesFirstSeen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d1 := day("2026-08-01")
	d2 := day("2026-08-02")

	if err := s.UpsertNormalizedJob(ctx, testJob("j1", d1)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	j := testJob("j1", d2)
	j.Title = "Senior Data Analyst"
	if err := s.UpsertNormalizedJob(ctx, j); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetJob(ctx, model.SourceAdzuna, "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Title != "Senior Data Analyst" {
		t.Errorf("Title = %q, not updated", got.Title)
	}
	if !got.FirstSeen.Equal(d1) {
		t.Errorf("FirstSeen = %v, want original %v", got.FirstSeen, d1)
	}
	if !got.LastSeen.Equal(d2) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, d2)
	}
}

func TestClearActiveFlagsScopedToSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := day("2026-08-01")

	adz := testJob("a1", d)
	js := testJob("js1", d)
	js.Source = model.SourceJSearch
	for _, j := range []model.NormalizedJob{adz, js} {
		if err := s.UpsertNormalizedJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.ClearActiveFlags(ctx, model.SourceAdzuna); err != nil {
		t.Fatalf("ClearActiveFlags: %v", err)
	}

	gotAdz, _ := s.GetJob(ctx, model.SourceAdzuna, "a1")
	gotJS, _ := s.GetJob(ctx, model.SourceJSearch, "js1")
	if gotAdz.IsActive {
		t.Error("adzuna job still active after clear")
	}
	if !gotJS.IsActive {
		t.Error("jsearch job deactivated by adzuna clear")
	}
}

func TestRawForEnrichmentPicksMissingAndStale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d1 := day("2026-08-01")
	d2 := day("2026-08-02")

	// never enriched
	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("new", "x"), d2); err != nil {
		t.Fatal(err)
	}
	// enriched and up to date
	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("done", "x"), d1); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertNormalizedJob(ctx, testJob("done", d1)); err != nil {
		t.Fatal(err)
	}
	// enriched, then seen again on a later day
	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("stale", "x"), d1); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertNormalizedJob(ctx, testJob("stale", d1)); err != nil {
		t.Fatal(err)
	}
	if err := s.TouchObservation(ctx, model.SourceAdzuna, rawJob("stale", "x"), d2); err != nil {
		t.Fatal(err)
	}

	rows, err := s.RawForEnrichment(ctx, model.SourceAdzuna)
	if err != nil {
		t.Fatalf("RawForEnrichment: %v", err)
	}
	ids := make(map[string]bool)
	for _, r := range rows {
		ids[r.JobID] = true
	}
	if len(ids) != 2 || !ids["new"] || !ids["stale"] {
		t.Errorf("ids = %v, want {new, stale}", ids)
	}
}

func TestUpsertCityDayStatsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := day("2026-08-01")

	st := model.CityDayStats{City: "Chicago", State: "IL", RunDate: d, TotalJobs: 10, ActiveJobs: 8}
	if err := s.UpsertCityDayStats(ctx, st); err != nil {
		t.Fatal(err)
	}
	st.TotalJobs = 12
	if err := s.UpsertCityDayStats(ctx, st); err != nil {
		t.Fatal(err)
	}

	rows, err := s.CityDayStatsFor(ctx, d.Format(model.DateFormat))
	if err != nil {
		t.Fatalf("CityDayStatsFor: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].TotalJobs != 12 {
		t.Errorf("TotalJobs = %d, want 12", rows[0].TotalJobs)
	}
}

func TestCitySnapshotRoundTripsCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := model.CitySnapshot{
		City: "Chicago", State: "IL", ActiveJobs: 5,
		TopCategories: []string{"IT Jobs", "Finance Jobs"},
	}
	if err := s.UpsertCitySnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}

	got, err := s.CitySnapshot(ctx, "Chicago", "IL")
	if err != nil {
		t.Fatalf("CitySnapshot: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot")
	}
	if len(got.TopCategories) != 2 || got.TopCategories[0] != "IT Jobs" {
		t.Errorf("TopCategories = %v", got.TopCategories)
	}
}

func TestReplaceHousingRawOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []map[string]string{{"RegionName": "Chicago, IL"}, {"RegionName": "Detroit, MI"}}
	if err := s.ReplaceHousingRaw(ctx, "zori", first); err != nil {
		t.Fatal(err)
	}
	second := []map[string]string{{"RegionName": "Austin, TX"}}
	if err := s.ReplaceHousingRaw(ctx, "zori", second); err != nil {
		t.Fatal(err)
	}

	rows, err := s.HousingRaw(ctx, "zori")
	if err != nil {
		t.Fatalf("HousingRaw: %v", err)
	}
	if len(rows) != 1 || rows[0]["RegionName"] != "Austin, TX" {
		t.Errorf("rows = %v, want single Austin row", rows)
	}
}

func TestClearTiers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := day("2026-08-01")

	if err := s.InsertObservation(ctx, model.SourceAdzuna, rawJob("j1", "x"), d); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertNormalizedJob(ctx, testJob("j1", d)); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertCityDayStats(ctx, model.CityDayStats{City: "Chicago", State: "IL", RunDate: d}); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearSilver(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearGold(ctx); err != nil {
		t.Fatal(err)
	}

	jobs, _ := s.AllJobs(ctx)
	if len(jobs) != 0 {
		t.Errorf("silver not cleared: %d jobs", len(jobs))
	}
	stats, _ := s.CityDayStatsFor(ctx, d.Format(model.DateFormat))
	if len(stats) != 0 {
		t.Errorf("gold not cleared: %d rows", len(stats))
	}
	// bronze untouched
	obs, _ := s.GetObservation(ctx, model.SourceAdzuna, "j1")
	if obs == nil {
		t.Error("bronze unexpectedly cleared")
	}

	if err := s.ClearBronze(ctx); err != nil {
		t.Fatal(err)
	}
	obs, _ = s.GetObservation(ctx, model.SourceAdzuna, "j1")
	if obs != nil {
		t.Error("bronze not cleared")
	}
}
