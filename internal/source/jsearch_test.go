package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelez-dev/jobradar/internal/model"
)

func TestJSearchFetchPage_Success(t *testing.T) {
	payload := `{
		"status": "OK",
		"data": [
			{"job_id": "abc123", "job_title": "Data Analyst", "job_city": "Chicago"},
			{"job_title": "no id, skipped"},
			{"job_id": "def456", "job_title": "Data Engineer"}
		]
	}`
	var gotQuery map[string][]string
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("x-rapidapi-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewJSearchFetcher("rapid-key", srv.Client(), testLimiter())
	f.baseURL = srv.URL

	page, err := f.FetchPage(context.Background(), "Chicago, IL", "data analyst", 2)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(page.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2 (id-less result skipped)", len(page.Jobs))
	}
	if page.Jobs[0].JobID != "abc123" || page.Jobs[1].JobID != "def456" {
		t.Errorf("ids = %q, %q", page.Jobs[0].JobID, page.Jobs[1].JobID)
	}
	// JSearch has no response-level metadata.
	if page.Meta.Count != 0 || page.Meta.MeanSalary != 0 {
		t.Errorf("Meta = %+v, want zero", page.Meta)
	}

	if gotKey != "rapid-key" {
		t.Errorf("x-rapidapi-key = %q", gotKey)
	}
	if q := gotQuery["query"]; len(q) != 1 || q[0] != "data analyst jobs in Chicago, IL" {
		t.Errorf("query = %v", gotQuery["query"])
	}
	if p := gotQuery["page"]; len(p) != 1 || p[0] != "2" {
		t.Errorf("page = %v", gotQuery["page"])
	}
}

func TestJSearchFetchPage_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewJSearchFetcher("rapid-key", srv.Client(), testLimiter())
	f.baseURL = srv.URL

	_, err := f.FetchPage(context.Background(), "Chicago, IL", "data analyst", 1)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %T is not *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
}

func TestJSearchFetchPage_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "data": []}`))
	}))
	defer srv.Close()

	f := NewJSearchFetcher("rapid-key", srv.Client(), testLimiter())
	f.baseURL = srv.URL

	page, err := f.FetchPage(context.Background(), "Nowhere, KS", "basket weaver", 1)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Jobs) != 0 {
		t.Errorf("got %d jobs, want 0", len(page.Jobs))
	}
}
