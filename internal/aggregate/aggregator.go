// Package aggregate recomputes the gold tier from the current silver jobs
// table. Both outputs are idempotent upserts: rerunning for the same date
// rewrites the same rows.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
	"github.com/avelez-dev/jobradar/internal/store"
)

// Aggregator batch-recomputes per-city statistics and snapshots.
type Aggregator struct {
	store  *store.Store
	logger *slog.Logger
}

func New(st *store.Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: st, logger: logger}
}

// Run groups the whole silver table by (city, state) and rewrites the gold
// rows for runDate.
func (a *Aggregator) Run(ctx context.Context, runDate time.Time) error {
	runDate = model.Day(runDate)

	jobs, err := a.store.AllJobs(ctx)
	if err != nil {
		return err
	}

	groups := make(map[[2]string][]model.NormalizedJob)
	for _, j := range jobs {
		key := [2]string{j.City, j.StateCode}
		groups[key] = append(groups[key], j)
	}

	for key, group := range groups {
		stats := computeDayStats(key[0], key[1], group, runDate)
		if err := a.store.UpsertCityDayStats(ctx, stats); err != nil {
			return err
		}
		snap := computeSnapshot(key[0], key[1], group, runDate)
		if err := a.store.UpsertCitySnapshot(ctx, snap); err != nil {
			return err
		}
	}

	a.logger.Info("aggregation complete", "run_date", runDate.Format(model.DateFormat), "cities", len(groups))
	return nil
}

func computeDayStats(city, state string, jobs []model.NormalizedJob, runDate time.Time) model.CityDayStats {
	st := model.CityDayStats{City: city, State: state, RunDate: runDate, TotalJobs: len(jobs)}

	var mins, maxs []float64
	for _, j := range jobs {
		if j.IsActive {
			st.ActiveJobs++
		}
		if j.FirstSeen.Equal(runDate) {
			st.NewJobs++
		}
		if !j.IsActive && j.LastSeen.Before(runDate) {
			st.ExpiredJobs++
		}
		if j.HasSalary {
			st.JobsWithSalary++
			mins = append(mins, j.SalaryMin)
			maxs = append(maxs, j.SalaryMax)
		}
		if j.IsRemote {
			st.RemoteJobs++
		}
		if j.JobType == "full-time" {
			st.FulltimeJobs++
		}
		switch j.Seniority {
		case model.SeniorityJunior:
			st.JuniorJobs++
		case model.SeniorityMid:
			st.MidJobs++
		case model.SenioritySenior:
			st.SeniorJobs++
		}
	}

	st.AvgSalaryMin = mean(mins)
	st.AvgSalaryMax = mean(maxs)
	st.MedianSalaryMin = median(mins)
	st.MedianSalaryMax = median(maxs)
	return st
}

func computeSnapshot(city, state string, jobs []model.NormalizedJob, runDate time.Time) model.CitySnapshot {
	snap := model.CitySnapshot{City: city, State: state}
	cutoff7 := runDate.AddDate(0, 0, -7)
	cutoff30 := runDate.AddDate(0, 0, -30)

	var salaries []float64
	var before7, before30 int
	catCounts := make(map[string]int)

	for _, j := range jobs {
		if j.IsActive {
			snap.ActiveJobs++
			if j.CategoryLabel != "" {
				catCounts[j.CategoryLabel]++
			}
		}
		if !j.FirstSeen.Before(cutoff7) {
			snap.NewJobs7d++
		} else {
			before7++
		}
		if !j.FirstSeen.Before(cutoff30) {
			snap.NewJobs30d++
		} else {
			before30++
		}
		if j.HasSalary {
			salaries = append(salaries, (j.SalaryMin+j.SalaryMax)/2)
		}
	}

	snap.AvgSalary = mean(salaries)
	snap.JobGrowthRate7d = growthRate(snap.NewJobs7d, before7)
	snap.JobGrowthRate30d = growthRate(snap.NewJobs30d, before30)
	snap.TopCategories = topCategories(catCounts, 5)
	return snap
}

// growthRate is new-in-window over seen-before-window as a percentage,
// defined as 0 when nothing predates the window.
func growthRate(inWindow, beforeWindow int) float64 {
	if beforeWindow == 0 {
		return 0
	}
	return float64(inWindow) / float64(beforeWindow) * 100
}

// topCategories returns the n most frequent labels, count descending with
// label ascending as the stable tiebreak.
func topCategories(counts map[string]int, n int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, k int) bool {
		if counts[labels[i]] != counts[labels[k]] {
			return counts[labels[i]] > counts[labels[k]]
		}
		return labels[i] < labels[k]
	})
	if len(labels) > n {
		labels = labels[:n]
	}
	return labels
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// median interpolates between the two middle values for even-length input.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
