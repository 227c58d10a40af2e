// Package ingest owns the fetch-and-reconcile cycle: pull paginated results
// from an upstream source, decide per job whether it is brand new, a
// day-over-day reappearance or a same-day duplicate, and record API usage
// for cycles that contributed anything new.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
)

// ObservationStore is the slice of the store the reconciler needs. Both
// *store.Store and *store.Tx satisfy it; cycles pass the transaction view.
type ObservationStore interface {
	JobIDsSeenOn(ctx context.Context, source model.Source, day time.Time) (map[string]bool, error)
	GetObservation(ctx context.Context, source model.Source, jobID string) (*model.RawObservation, error)
	InsertObservation(ctx context.Context, source model.Source, job model.RawJob, day time.Time) error
	TouchObservation(ctx context.Context, source model.Source, job model.RawJob, day time.Time) error
	UpsertCallRecord(ctx context.Context, rec model.CallRecord) error
}

// Reconcile runs the freshness state machine over one batch of fetched jobs.
// It returns the number of new-or-reappeared jobs: first-ever observations
// plus records whose last_seen advanced to runDate. Jobs already seen on
// runDate are skipped entirely, which makes the call idempotent within a
// day. The pre-filter snapshot is taken before any write.
func Reconcile(ctx context.Context, s ObservationStore, source model.Source, batch []model.RawJob, runDate time.Time) (int, error) {
	runDate = model.Day(runDate)

	seenToday, err := s.JobIDsSeenOn(ctx, source, runDate)
	if err != nil {
		return 0, fmt.Errorf("reconciling %s batch: %w", source, err)
	}

	newCount := 0
	for _, job := range batch {
		if seenToday[job.JobID] {
			continue
		}
		// Dedupe repeats within the batch itself as well.
		seenToday[job.JobID] = true

		obs, err := s.GetObservation(ctx, source, job.JobID)
		if err != nil {
			return newCount, fmt.Errorf("reconciling %s batch: %w", source, err)
		}

		switch {
		case obs == nil:
			if err := s.InsertObservation(ctx, source, job, runDate); err != nil {
				return newCount, fmt.Errorf("reconciling %s batch: %w", source, err)
			}
			newCount++
		case obs.LastSeen.Before(runDate):
			if err := s.TouchObservation(ctx, source, job, runDate); err != nil {
				return newCount, fmt.Errorf("reconciling %s batch: %w", source, err)
			}
			newCount++
		default:
			// last_seen == runDate: already handled earlier in this run.
			// The pre-filter snapshot normally catches this; nothing to do.
		}
	}
	return newCount, nil
}
