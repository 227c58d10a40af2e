package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
)

// ClearActiveFlags marks every silver job for source inactive. The
// enrichment run calls this first; jobs re-observed today get the flag back
// when their upsert lands.
func (s *Store) ClearActiveFlags(ctx context.Context, source model.Source) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET is_active = 0 WHERE source = ? AND is_active = 1`, string(source))
	if err != nil {
		return fmt.Errorf("clearing active flags for %s: %w", source, err)
	}
	return nil
}

// RawForEnrichment returns the bronze observations for source that have no
// silver row yet or whose last_seen has advanced past the silver row's.
func (s *Store) RawForEnrichment(ctx context.Context, source model.Source) ([]model.RawObservation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.job_id, r.first_seen, r.last_seen, r.times_seen, r.payload
		 FROM raw_jobs r
		 LEFT JOIN jobs s ON s.source = r.source AND s.job_id = r.job_id
		 WHERE r.source = ? AND (s.job_id IS NULL OR r.last_seen > s.last_seen)`,
		string(source))
	if err != nil {
		return nil, fmt.Errorf("querying raw jobs for enrichment: %w", err)
	}
	defer rows.Close()

	var out []model.RawObservation
	for rows.Next() {
		obs := model.RawObservation{Source: source}
		var firstSeen, lastSeen string
		var payload []byte
		if err := rows.Scan(&obs.JobID, &firstSeen, &lastSeen, &obs.TimesSeen, &payload); err != nil {
			return nil, fmt.Errorf("scanning raw job: %w", err)
		}
		obs.Payload = payload
		if obs.FirstSeen, err = time.Parse(model.DateFormat, firstSeen); err != nil {
			return nil, fmt.Errorf("parsing first_seen for %s: %w", obs.JobID, err)
		}
		if obs.LastSeen, err = time.Parse(model.DateFormat, lastSeen); err != nil {
			return nil, fmt.Errorf("parsing last_seen for %s: %w", obs.JobID, err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

// UpsertNormalizedJob writes one canonical job row, replacing every field
// except first_seen on conflict.
func (s *Store) UpsertNormalizedJob(ctx context.Context, j model.NormalizedJob) error {
	var salaryMin, salaryMax sql.NullFloat64
	if j.HasSalary {
		salaryMin = sql.NullFloat64{Float64: j.SalaryMin, Valid: true}
		salaryMax = sql.NullFloat64{Float64: j.SalaryMax, Valid: true}
	}
	var postDate sql.NullString
	if !j.PostDate.IsZero() {
		postDate = sql.NullString{String: j.PostDate.Format(model.DateFormat), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (
			source, job_id, title, company, location, city, county, state,
			state_code, cbsa_code, category, category_label, salary_min,
			salary_max, post_date, first_seen, last_seen, times_seen,
			is_active, url, latitude, longitude, seniority, is_remote,
			industry, job_type, yoe_min, education, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, job_id) DO UPDATE SET
			title          = excluded.title,
			company        = excluded.company,
			location       = excluded.location,
			city           = excluded.city,
			county         = excluded.county,
			state          = excluded.state,
			state_code     = excluded.state_code,
			cbsa_code      = excluded.cbsa_code,
			category       = excluded.category,
			category_label = excluded.category_label,
			salary_min     = excluded.salary_min,
			salary_max     = excluded.salary_max,
			post_date      = excluded.post_date,
			last_seen      = excluded.last_seen,
			times_seen     = excluded.times_seen,
			is_active      = excluded.is_active,
			url            = excluded.url,
			latitude       = excluded.latitude,
			longitude      = excluded.longitude,
			seniority      = excluded.seniority,
			is_remote      = excluded.is_remote,
			industry       = excluded.industry,
			job_type       = excluded.job_type,
			yoe_min        = excluded.yoe_min,
			education      = excluded.education,
			processed_at   = excluded.processed_at,
			updated_at     = datetime('now')`,
		string(j.Source), j.JobID, j.Title, j.Company, j.Location, j.City, j.County, j.State,
		j.StateCode, j.CBSACode, j.Category, j.CategoryLabel, salaryMin,
		salaryMax, postDate, j.FirstSeen.Format(model.DateFormat), j.LastSeen.Format(model.DateFormat), j.TimesSeen,
		boolToInt(j.IsActive), j.URL, j.Latitude, j.Longitude, string(j.Seniority), boolToInt(j.IsRemote),
		j.Industry, j.JobType, j.YOEMin, j.Education, j.ProcessedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting job %s/%s: %w", j.Source, j.JobID, err)
	}
	return nil
}

// AllJobs returns every silver job, ordered by city then title.
func (s *Store) AllJobs(ctx context.Context) ([]model.NormalizedJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, job_id, title, company, location, city, county, state,
			state_code, cbsa_code, category, category_label, salary_min,
			salary_max, post_date, first_seen, last_seen, times_seen,
			is_active, url, latitude, longitude, seniority, is_remote,
			industry, job_type, yoe_min, education
		 FROM jobs ORDER BY city, title`)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var out []model.NormalizedJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetJob returns one silver row, or nil if absent.
func (s *Store) GetJob(ctx context.Context, source model.Source, jobID string) (*model.NormalizedJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, job_id, title, company, location, city, county, state,
			state_code, cbsa_code, category, category_label, salary_min,
			salary_max, post_date, first_seen, last_seen, times_seen,
			is_active, url, latitude, longitude, seniority, is_remote,
			industry, job_type, yoe_min, education
		 FROM jobs WHERE source = ? AND job_id = ?`, string(source), jobID)
	if err != nil {
		return nil, fmt.Errorf("querying job %s/%s: %w", source, jobID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	j, err := scanJob(rows)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// ClearSilver truncates the silver tables for a reprocessing run.
func (s *Store) ClearSilver(ctx context.Context) error {
	for _, table := range []string{"jobs", "housing_metrics"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func scanJob(rows *sql.Rows) (model.NormalizedJob, error) {
	var j model.NormalizedJob
	var source, seniority string
	var salaryMin, salaryMax sql.NullFloat64
	var postDate sql.NullString
	var firstSeen, lastSeen string
	var isActive, isRemote int

	err := rows.Scan(&source, &j.JobID, &j.Title, &j.Company, &j.Location, &j.City, &j.County, &j.State,
		&j.StateCode, &j.CBSACode, &j.Category, &j.CategoryLabel, &salaryMin,
		&salaryMax, &postDate, &firstSeen, &lastSeen, &j.TimesSeen,
		&isActive, &j.URL, &j.Latitude, &j.Longitude, &seniority, &isRemote,
		&j.Industry, &j.JobType, &j.YOEMin, &j.Education)
	if err != nil {
		return j, fmt.Errorf("scanning job: %w", err)
	}

	j.Source = model.Source(source)
	j.Seniority = model.Seniority(seniority)
	j.IsActive = isActive != 0
	j.IsRemote = isRemote != 0
	if salaryMin.Valid {
		j.HasSalary = true
		j.SalaryMin = salaryMin.Float64
		j.SalaryMax = salaryMax.Float64
	}
	if postDate.Valid {
		if t, err := time.Parse(model.DateFormat, postDate.String); err == nil {
			j.PostDate = t
		}
	}
	if j.FirstSeen, err = time.Parse(model.DateFormat, firstSeen); err != nil {
		return j, fmt.Errorf("parsing first_seen for %s: %w", j.JobID, err)
	}
	if j.LastSeen, err = time.Parse(model.DateFormat, lastSeen); err != nil {
		return j, fmt.Errorf("parsing last_seen for %s: %w", j.JobID, err)
	}
	return j, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
