package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/avelez-dev/jobradar/internal/model"
)

const defaultAdzunaBaseURL = "https://api.adzuna.com/v1/api/jobs/us/search"

// adzunaResponse is the top-level Adzuna search response. Results are kept
// as raw JSON so the stored payload is exactly what the API returned.
type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int64             `json:"count"`
	Mean    float64           `json:"mean"`
}

// adzunaJobID probes only the id field of a result document.
type adzunaJobID struct {
	ID json.RawMessage `json:"id"`
}

// AdzunaFetcher fetches paginated search results from the Adzuna jobs API.
type AdzunaFetcher struct {
	appID   string
	appKey  string
	baseURL string
	perPage int
	client  *http.Client
	limiter *rate.Limiter
}

// NewAdzunaFetcher creates a fetcher authenticated with the given app
// credentials. The limiter spaces out page requests; all fetchers hitting
// the same API should share one instance.
func NewAdzunaFetcher(appID, appKey string, perPage int, client *http.Client, limiter *rate.Limiter) *AdzunaFetcher {
	return &AdzunaFetcher{
		appID:   appID,
		appKey:  appKey,
		baseURL: defaultAdzunaBaseURL,
		perPage: perPage,
		client:  client,
		limiter: limiter,
	}
}

func (f *AdzunaFetcher) Source() model.Source { return model.SourceAdzuna }

// FetchPage retrieves one page of results for the (city, role) query.
func (f *AdzunaFetcher) FetchPage(ctx context.Context, city, role string, page int) (*model.Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("adzuna fetch for %q in %q: %w", role, city, err)
	}

	params := url.Values{}
	params.Set("app_id", f.appID)
	params.Set("app_key", f.appKey)
	params.Set("what", role)
	params.Set("where", city)
	params.Set("results_per_page", strconv.Itoa(f.perPage))
	params.Set("content-type", "application/json")

	reqURL := fmt.Sprintf("%s/%d?%s", f.baseURL, page, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("adzuna fetch for %q in %q: %w", role, city, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna fetch for %q in %q: %w", role, city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("adzuna fetch for %q in %q", role, city),
		}
	}

	var ar adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("adzuna fetch for %q in %q: decoding response: %w", role, city, err)
	}

	p := &model.Page{
		Meta: model.PageMeta{Count: ar.Count, MeanSalary: ar.Mean},
		Jobs: make([]model.RawJob, 0, len(ar.Results)),
	}
	for _, raw := range ar.Results {
		var probe adzunaJobID
		if err := json.Unmarshal(raw, &probe); err != nil || len(probe.ID) == 0 {
			// A result without an id cannot be reconciled; drop it here.
			continue
		}
		p.Jobs = append(p.Jobs, model.RawJob{JobID: idString(probe.ID), Payload: raw})
	}
	return p, nil
}
