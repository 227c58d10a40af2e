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

const defaultJSearchBaseURL = "https://jsearch.p.rapidapi.com/search"

type jsearchResponse struct {
	Data []json.RawMessage `json:"data"`
}

type jsearchJobID struct {
	JobID string `json:"job_id"`
}

// JSearchFetcher fetches paginated search results from the JSearch API on
// RapidAPI.
type JSearchFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewJSearchFetcher creates a fetcher authenticated with a RapidAPI key.
func NewJSearchFetcher(apiKey string, client *http.Client, limiter *rate.Limiter) *JSearchFetcher {
	return &JSearchFetcher{
		apiKey:  apiKey,
		baseURL: defaultJSearchBaseURL,
		client:  client,
		limiter: limiter,
	}
}

func (f *JSearchFetcher) Source() model.Source { return model.SourceJSearch }

// FetchPage retrieves one page of results for the (city, role) query.
// JSearch reports no response-level count or salary metadata.
func (f *JSearchFetcher) FetchPage(ctx context.Context, city, role string, page int) (*model.Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("jsearch fetch for %q in %q: %w", role, city, err)
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s jobs in %s", role, city))
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", "1")
	params.Set("country", "us")
	params.Set("date_posted", "all")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jsearch fetch for %q in %q: %w", role, city, err)
	}
	req.Header.Set("x-rapidapi-key", f.apiKey)
	req.Header.Set("x-rapidapi-host", "jsearch.p.rapidapi.com")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch fetch for %q in %q: %w", role, city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("jsearch fetch for %q in %q", role, city),
		}
	}

	var jr jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("jsearch fetch for %q in %q: decoding response: %w", role, city, err)
	}

	p := &model.Page{Jobs: make([]model.RawJob, 0, len(jr.Data))}
	for _, raw := range jr.Data {
		var probe jsearchJobID
		if err := json.Unmarshal(raw, &probe); err != nil || probe.JobID == "" {
			continue
		}
		p.Jobs = append(p.Jobs, model.RawJob{JobID: probe.JobID, Payload: raw})
	}
	return p, nil
}
