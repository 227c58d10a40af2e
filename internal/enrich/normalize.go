// Package enrich turns bronze observations into canonical silver job rows.
// Each upstream source gets its own Normalizer variant; adding a source
// means adding a variant, never branching inside shared logic.
package enrich

import (
	"time"

	"github.com/avelez-dev/jobradar/internal/model"
)

// Normalizer maps one source's raw payload shape onto the canonical record.
type Normalizer interface {
	Source() model.Source
	Normalize(obs model.RawObservation, runDate time.Time) (model.NormalizedJob, error)
}

// ForSource returns the normalizer variant for src.
func ForSource(src model.Source) (Normalizer, bool) {
	switch src {
	case model.SourceAdzuna:
		return adzunaNormalizer{}, true
	case model.SourceJSearch:
		return jsearchNormalizer{}, true
	}
	return nil, false
}
