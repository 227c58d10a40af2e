// Package source contains the upstream job-API fetchers. Each adapter
// returns raw pages with every job payload captured verbatim; field mapping
// happens later in the enrichment step, never here.
package source

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/avelez-dev/jobradar/internal/model"
)

// Fetcher retrieves one page of job postings for a (city, role) query.
// Pages are 1-based. An empty Jobs slice signals the end of results.
type Fetcher interface {
	Source() model.Source
	FetchPage(ctx context.Context, city, role string, page int) (*model.Page, error)
}

// idString extracts a job id that may be encoded as either a JSON string or
// a JSON number.
func idString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err == nil {
			return unquoted
		}
	}
	return s
}
