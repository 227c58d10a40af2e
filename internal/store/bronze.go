package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
)

// queries holds the operations shared by Store and Tx.
type queries struct {
	q querier
}

// JobIDsSeenOn returns the job ids for source whose last_seen equals day.
// The reconciler takes this snapshot before writing anything so that
// re-submissions within a run are filtered out up front.
func (c queries) JobIDsSeenOn(ctx context.Context, source model.Source, day time.Time) (map[string]bool, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT job_id FROM raw_jobs WHERE source = ? AND last_seen = ?`,
		string(source), day.Format(model.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("querying job ids seen on %s: %w", day.Format(model.DateFormat), err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning job id: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// GetObservation returns the observation for (source, jobID), or nil if the
// job has never been seen.
func (c queries) GetObservation(ctx context.Context, source model.Source, jobID string) (*model.RawObservation, error) {
	var obs model.RawObservation
	var firstSeen, lastSeen string
	var payload []byte
	err := c.q.QueryRowContext(ctx,
		`SELECT first_seen, last_seen, times_seen, payload FROM raw_jobs WHERE source = ? AND job_id = ?`,
		string(source), jobID).Scan(&firstSeen, &lastSeen, &obs.TimesSeen, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting observation %s/%s: %w", source, jobID, err)
	}

	obs.Source = source
	obs.JobID = jobID
	obs.Payload = payload
	if obs.FirstSeen, err = time.Parse(model.DateFormat, firstSeen); err != nil {
		return nil, fmt.Errorf("parsing first_seen for %s/%s: %w", source, jobID, err)
	}
	if obs.LastSeen, err = time.Parse(model.DateFormat, lastSeen); err != nil {
		return nil, fmt.Errorf("parsing last_seen for %s/%s: %w", source, jobID, err)
	}
	return &obs, nil
}

// InsertObservation records a job id seen for the first time:
// first_seen = last_seen = day, times_seen = 1.
func (c queries) InsertObservation(ctx context.Context, source model.Source, job model.RawJob, day time.Time) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO raw_jobs (source, job_id, first_seen, last_seen, times_seen, payload)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		string(source), job.JobID, day.Format(model.DateFormat), day.Format(model.DateFormat), string(job.Payload))
	if err != nil {
		return fmt.Errorf("inserting observation %s/%s: %w", source, job.JobID, err)
	}
	return nil
}

// TouchObservation advances last_seen to day, increments times_seen and
// replaces the payload. Only valid when the stored last_seen is earlier
// than day; first_seen is never modified.
func (c queries) TouchObservation(ctx context.Context, source model.Source, job model.RawJob, day time.Time) error {
	_, err := c.q.ExecContext(ctx,
		`UPDATE raw_jobs
		 SET last_seen = ?, times_seen = times_seen + 1, payload = ?, updated_at = datetime('now')
		 WHERE source = ? AND job_id = ?`,
		day.Format(model.DateFormat), string(job.Payload), string(source), job.JobID)
	if err != nil {
		return fmt.Errorf("touching observation %s/%s: %w", source, job.JobID, err)
	}
	return nil
}

// UpdatePayload replaces the payload of a same-day re-observation without
// touching last_seen or times_seen.
func (c queries) UpdatePayload(ctx context.Context, source model.Source, job model.RawJob) error {
	_, err := c.q.ExecContext(ctx,
		`UPDATE raw_jobs SET payload = ?, updated_at = datetime('now') WHERE source = ? AND job_id = ?`,
		string(job.Payload), string(source), job.JobID)
	if err != nil {
		return fmt.Errorf("updating payload %s/%s: %w", source, job.JobID, err)
	}
	return nil
}

// UpsertCallRecord writes one (run_date, city, role, source) usage row.
// Repeat upserts for the same key accumulate jobs_retrieved and overwrite
// the other fields with the latest values.
func (c queries) UpsertCallRecord(ctx context.Context, rec model.CallRecord) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO call_records (run_date, city, role, source, pages_fetched, api_count, api_mean_salary, jobs_retrieved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_date, city, role, source) DO UPDATE SET
			pages_fetched   = excluded.pages_fetched,
			api_count       = excluded.api_count,
			api_mean_salary = excluded.api_mean_salary,
			jobs_retrieved  = call_records.jobs_retrieved + excluded.jobs_retrieved,
			pulled_at       = datetime('now')`,
		rec.RunDate.Format(model.DateFormat), rec.City, rec.Role, string(rec.Source),
		rec.PagesFetched, rec.APICount, rec.APIMeanSalary, rec.JobsRetrieved)
	if err != nil {
		return fmt.Errorf("upserting call record for %s/%s: %w", rec.City, rec.Role, err)
	}
	return nil
}

// GetCallRecord returns the usage row for the given key, or nil if absent.
func (c queries) GetCallRecord(ctx context.Context, runDate time.Time, city, role string, source model.Source) (*model.CallRecord, error) {
	rec := model.CallRecord{RunDate: runDate, City: city, Role: role, Source: source}
	err := c.q.QueryRowContext(ctx,
		`SELECT pages_fetched, api_count, api_mean_salary, jobs_retrieved
		 FROM call_records WHERE run_date = ? AND city = ? AND role = ? AND source = ?`,
		runDate.Format(model.DateFormat), city, role, string(source)).
		Scan(&rec.PagesFetched, &rec.APICount, &rec.APIMeanSalary, &rec.JobsRetrieved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting call record for %s/%s: %w", city, role, err)
	}
	return &rec, nil
}

// ClearBronze wipes the raw observation, call record and raw housing tables.
func (s *Store) ClearBronze(ctx context.Context) error {
	for _, table := range []string{"raw_jobs", "call_records", "housing_raw"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}
