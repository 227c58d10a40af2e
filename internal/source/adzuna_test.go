package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/avelez-dev/jobradar/internal/model"
)

func testLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestAdzunaFetchPage_Success(t *testing.T) {
	payload := `{
		"count": 1234,
		"mean": 87500.5,
		"results": [
			{"id": "4001", "title": "Data Analyst", "description": "2 years experience"},
			{"id": 4002, "title": "Data Engineer", "description": "build pipelines"}
		]
	}`
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewAdzunaFetcher("app-id", "app-key", 50, srv.Client(), testLimiter())
	f.baseURL = srv.URL

	page, err := f.FetchPage(context.Background(), "Chicago, IL", "data analyst", 1)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if page.Meta.Count != 1234 {
		t.Errorf("Count = %d, want 1234", page.Meta.Count)
	}
	if page.Meta.MeanSalary != 87500.5 {
		t.Errorf("MeanSalary = %v, want 87500.5", page.Meta.MeanSalary)
	}
	if len(page.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(page.Jobs))
	}

	// String and numeric ids both normalize to strings.
	if page.Jobs[0].JobID != "4001" {
		t.Errorf("JobID = %q, want 4001", page.Jobs[0].JobID)
	}
	if page.Jobs[1].JobID != "4002" {
		t.Errorf("JobID = %q, want 4002", page.Jobs[1].JobID)
	}

	// The stored payload is the verbatim result document.
	if string(page.Jobs[0].Payload) != `{"id": "4001", "title": "Data Analyst", "description": "2 years experience"}` {
		t.Errorf("payload not captured verbatim: %s", page.Jobs[0].Payload)
	}

	if got := gotQuery["what"]; len(got) != 1 || got[0] != "data analyst" {
		t.Errorf("what param = %v", got)
	}
	if got := gotQuery["where"]; len(got) != 1 || got[0] != "Chicago, IL" {
		t.Errorf("where param = %v", got)
	}
}

func TestAdzunaFetchPage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewAdzunaFetcher("app-id", "app-key", 50, srv.Client(), testLimiter())
	f.baseURL = srv.URL

	_, err := f.FetchPage(context.Background(), "Chicago, IL", "data analyst", 1)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
}

func TestAdzunaFetchPage_SkipsResultsWithoutID(t *testing.T) {
	payload := `{"count": 2, "results": [{"title": "No ID here"}, {"id": "77", "title": "Has ID"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewAdzunaFetcher("app-id", "app-key", 50, srv.Client(), testLimiter())
	f.baseURL = srv.URL

	page, err := f.FetchPage(context.Background(), "Detroit, MI", "data analyst", 1)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].JobID != "77" {
		t.Errorf("expected only the job with an id, got %+v", page.Jobs)
	}
}

func TestJSearchFetchPage_SuccessMinimal(t *testing.T) {
	payload := `{"data": [{"job_id": "abc-1", "job_title": "Data Analyst"}]}`
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-rapidapi-key")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewJSearchFetcher("rapid-key", srv.Client(), testLimiter())
	f.baseURL = srv.URL

	page, err := f.FetchPage(context.Background(), "Chicago, IL", "data analyst", 1)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].JobID != "abc-1" {
		t.Fatalf("unexpected jobs: %+v", page.Jobs)
	}
	if gotHeader != "rapid-key" {
		t.Errorf("x-rapidapi-key = %q", gotHeader)
	}
}
