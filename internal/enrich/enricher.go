package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
	"github.com/avelez-dev/jobradar/internal/store"
)

// Enricher drives the bronze → silver pass for one or more sources.
type Enricher struct {
	store  *store.Store
	logger *slog.Logger
}

func NewEnricher(st *store.Store, logger *slog.Logger) *Enricher {
	return &Enricher{store: st, logger: logger}
}

// Run enriches every bronze observation for src that is new or has advanced
// since its silver row was written. Active flags for the source are cleared
// first, so only jobs observed on runDate come out active. A malformed
// payload skips that record and the batch continues. Returns the number of
// rows written.
func (e *Enricher) Run(ctx context.Context, src model.Source, runDate time.Time) (int, error) {
	norm, ok := ForSource(src)
	if !ok {
		return 0, fmt.Errorf("enriching %s: no normalizer for source", src)
	}

	if err := e.store.ClearActiveFlags(ctx, src); err != nil {
		return 0, err
	}

	raws, err := e.store.RawForEnrichment(ctx, src)
	if err != nil {
		return 0, err
	}
	if len(raws) == 0 {
		e.logger.Info("no new jobs to enrich", "source", src)
		return 0, nil
	}
	e.logger.Info("enriching jobs", "source", src, "count", len(raws))

	processed := 0
	for _, obs := range raws {
		j, err := norm.Normalize(obs, runDate)
		if err != nil {
			e.logger.Warn("skipping malformed record", "source", src, "job_id", obs.JobID, "error", err)
			continue
		}
		if err := e.store.UpsertNormalizedJob(ctx, j); err != nil {
			return processed, err
		}
		processed++
	}

	e.logger.Info("enrichment complete", "source", src, "processed", processed, "skipped", len(raws)-processed)
	return processed, nil
}
