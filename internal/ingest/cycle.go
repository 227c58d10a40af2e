package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
	"github.com/avelez-dev/jobradar/internal/source"
	"github.com/avelez-dev/jobradar/internal/store"
)

// Runner executes ingestion cycles for one upstream source.
type Runner struct {
	fetcher  source.Fetcher
	store    *store.Store
	maxPages int
	logger   *slog.Logger
}

// NewRunner wires a cycle runner with its dependencies.
func NewRunner(fetcher source.Fetcher, st *store.Store, maxPages int, logger *slog.Logger) *Runner {
	return &Runner{
		fetcher:  fetcher,
		store:    st,
		maxPages: maxPages,
		logger:   logger,
	}
}

// RunCycle ingests one (city, role) query: fetch pages until an empty page,
// the page cap or a fetch error, then reconcile everything fetched inside
// one transaction. A page failure abandons the remaining pages but the
// pages already fetched are still reconciled and counted. The call record
// is written only when the cycle contributed at least one new-or-reappeared
// job. Returns that count.
func (r *Runner) RunCycle(ctx context.Context, city, role string, runDate time.Time) (int, error) {
	src := r.fetcher.Source()
	runDate = model.Day(runDate)

	var batch []model.RawJob
	var meta model.PageMeta
	pagesFetched := 0

	for page := 1; page <= r.maxPages; page++ {
		p, err := r.fetcher.FetchPage(ctx, city, role, page)
		if err != nil {
			r.logger.Error("page fetch failed, abandoning remaining pages",
				"source", src, "city", city, "role", role, "page", page, "error", err)
			break
		}
		if pagesFetched == 0 {
			meta = p.Meta
		}
		if len(p.Jobs) == 0 {
			r.logger.Debug("no more results", "source", src, "city", city, "role", role, "page", page)
			break
		}
		pagesFetched++
		batch = append(batch, p.Jobs...)
		r.logger.Info("fetched page",
			"source", src, "city", city, "role", role, "page", page, "jobs", len(p.Jobs))
	}

	if len(batch) == 0 {
		r.logger.Info("cycle fetched nothing", "source", src, "city", city, "role", role)
		return 0, nil
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	newCount, err := Reconcile(ctx, tx, src, batch, runDate)
	if err != nil {
		return 0, err
	}

	if newCount > 0 {
		rec := model.CallRecord{
			RunDate:       runDate,
			City:          city,
			Role:          role,
			Source:        src,
			PagesFetched:  pagesFetched,
			APICount:      meta.Count,
			APIMeanSalary: meta.MeanSalary,
			JobsRetrieved: newCount,
		}
		if err := tx.UpsertCallRecord(ctx, rec); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if newCount == 0 {
		r.logger.Info("cycle found no new jobs",
			"source", src, "city", city, "role", role, "fetched", len(batch))
	} else {
		r.logger.Info("cycle complete",
			"source", src, "city", city, "role", role,
			"fetched", len(batch), "new", newCount, "pages", pagesFetched)
	}
	return newCount, nil
}
