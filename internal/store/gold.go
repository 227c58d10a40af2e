package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/avelez-dev/jobradar/internal/model"
)

// UpsertCityDayStats writes one aggregate row keyed (city, state, run_date).
// Rerunning for the same key overwrites the row, never duplicates it.
func (s *Store) UpsertCityDayStats(ctx context.Context, st model.CityDayStats) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO city_day_stats (
			city, state, run_date, total_jobs, active_jobs, new_jobs,
			expired_jobs, jobs_with_salary, avg_salary_min, avg_salary_max,
			median_salary_min, median_salary_max, remote_jobs, fulltime_jobs,
			junior_jobs, mid_jobs, senior_jobs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (city, state, run_date) DO UPDATE SET
			total_jobs        = excluded.total_jobs,
			active_jobs       = excluded.active_jobs,
			new_jobs          = excluded.new_jobs,
			expired_jobs      = excluded.expired_jobs,
			jobs_with_salary  = excluded.jobs_with_salary,
			avg_salary_min    = excluded.avg_salary_min,
			avg_salary_max    = excluded.avg_salary_max,
			median_salary_min = excluded.median_salary_min,
			median_salary_max = excluded.median_salary_max,
			remote_jobs       = excluded.remote_jobs,
			fulltime_jobs     = excluded.fulltime_jobs,
			junior_jobs       = excluded.junior_jobs,
			mid_jobs          = excluded.mid_jobs,
			senior_jobs       = excluded.senior_jobs,
			created_at        = datetime('now')`,
		st.City, st.State, st.RunDate.Format(model.DateFormat), st.TotalJobs, st.ActiveJobs, st.NewJobs,
		st.ExpiredJobs, st.JobsWithSalary, st.AvgSalaryMin, st.AvgSalaryMax,
		st.MedianSalaryMin, st.MedianSalaryMax, st.RemoteJobs, st.FulltimeJobs,
		st.JuniorJobs, st.MidJobs, st.SeniorJobs)
	if err != nil {
		return fmt.Errorf("upserting city day stats for %s, %s: %w", st.City, st.State, err)
	}
	return nil
}

// UpsertCitySnapshot writes the latest-state row keyed (city, state).
func (s *Store) UpsertCitySnapshot(ctx context.Context, snap model.CitySnapshot) error {
	cats, err := json.Marshal(snap.TopCategories)
	if err != nil {
		return fmt.Errorf("marshaling top categories for %s, %s: %w", snap.City, snap.State, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO city_snapshots (
			city, state, active_jobs, new_jobs_7d, new_jobs_30d, avg_salary,
			job_growth_rate_7d, job_growth_rate_30d, top_categories
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (city, state) DO UPDATE SET
			active_jobs         = excluded.active_jobs,
			new_jobs_7d         = excluded.new_jobs_7d,
			new_jobs_30d        = excluded.new_jobs_30d,
			avg_salary          = excluded.avg_salary,
			job_growth_rate_7d  = excluded.job_growth_rate_7d,
			job_growth_rate_30d = excluded.job_growth_rate_30d,
			top_categories      = excluded.top_categories,
			last_updated        = datetime('now')`,
		snap.City, snap.State, snap.ActiveJobs, snap.NewJobs7d, snap.NewJobs30d, snap.AvgSalary,
		snap.JobGrowthRate7d, snap.JobGrowthRate30d, string(cats))
	if err != nil {
		return fmt.Errorf("upserting city snapshot for %s, %s: %w", snap.City, snap.State, err)
	}
	return nil
}

// CityDayStatsFor returns the aggregate rows for one run date.
func (s *Store) CityDayStatsFor(ctx context.Context, runDate string) ([]model.CityDayStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT city, state, total_jobs, active_jobs, new_jobs, expired_jobs,
			jobs_with_salary, avg_salary_min, avg_salary_max,
			median_salary_min, median_salary_max, remote_jobs, fulltime_jobs,
			junior_jobs, mid_jobs, senior_jobs
		 FROM city_day_stats WHERE run_date = ? ORDER BY city, state`, runDate)
	if err != nil {
		return nil, fmt.Errorf("querying city day stats: %w", err)
	}
	defer rows.Close()

	var out []model.CityDayStats
	for rows.Next() {
		var st model.CityDayStats
		if err := rows.Scan(&st.City, &st.State, &st.TotalJobs, &st.ActiveJobs, &st.NewJobs,
			&st.ExpiredJobs, &st.JobsWithSalary, &st.AvgSalaryMin, &st.AvgSalaryMax,
			&st.MedianSalaryMin, &st.MedianSalaryMax, &st.RemoteJobs, &st.FulltimeJobs,
			&st.JuniorJobs, &st.MidJobs, &st.SeniorJobs); err != nil {
			return nil, fmt.Errorf("scanning city day stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// CitySnapshot returns the latest snapshot for (city, state), or nil.
func (s *Store) CitySnapshot(ctx context.Context, city, state string) (*model.CitySnapshot, error) {
	snap := model.CitySnapshot{City: city, State: state}
	var cats string
	err := s.db.QueryRowContext(ctx,
		`SELECT active_jobs, new_jobs_7d, new_jobs_30d, avg_salary,
			job_growth_rate_7d, job_growth_rate_30d, top_categories
		 FROM city_snapshots WHERE city = ? AND state = ?`, city, state).
		Scan(&snap.ActiveJobs, &snap.NewJobs7d, &snap.NewJobs30d, &snap.AvgSalary,
			&snap.JobGrowthRate7d, &snap.JobGrowthRate30d, &cats)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying city snapshot for %s, %s: %w", city, state, err)
	}
	if err := json.Unmarshal([]byte(cats), &snap.TopCategories); err != nil {
		return nil, fmt.Errorf("parsing top categories for %s, %s: %w", city, state, err)
	}
	return &snap, nil
}

// ClearGold truncates the aggregate tables for a reprocessing run.
func (s *Store) ClearGold(ctx context.Context) error {
	for _, table := range []string{"city_day_stats", "city_snapshots"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}
