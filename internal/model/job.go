package model

import (
	"encoding/json"
	"time"
)

// DateFormat is the calendar-day layout used everywhere dates are persisted.
const DateFormat = "2006-01-02"

// Source identifies an upstream job API.
type Source string

const (
	SourceAdzuna  Source = "adzuna"
	SourceJSearch Source = "jsearch"
)

// Seniority is the coarse experience-level bucket for a posting.
type Seniority string

const (
	SeniorityJunior Seniority = "jr"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "sr"
)

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RawJob is one job as fetched from an upstream API: the external id plus the
// verbatim response document. Nothing is parsed out of Payload at this stage.
type RawJob struct {
	JobID   string
	Payload json.RawMessage
}

// PageMeta is the response-level metadata some APIs report alongside results.
type PageMeta struct {
	Count      int64   // API-reported total matches for the query
	MeanSalary float64 // API-reported mean salary, 0 if absent
}

// Page is one page of an upstream fetch.
type Page struct {
	Jobs []RawJob
	Meta PageMeta
}

// RawObservation tracks one external job id across fetch days (bronze tier).
// Unique on (Source, JobID). TimesSeen increments only when LastSeen advances
// to a new calendar day; FirstSeen never changes after insert.
type RawObservation struct {
	Source    Source
	JobID     string
	FirstSeen time.Time
	LastSeen  time.Time
	TimesSeen int
	Payload   json.RawMessage
}

// CallRecord explains one day's API usage for a (city, role, source) query.
// Written only when the cycle contributed at least one new-or-reappeared job.
type CallRecord struct {
	RunDate       time.Time
	City          string
	Role          string
	Source        Source
	PagesFetched  int
	APICount      int64
	APIMeanSalary float64
	JobsRetrieved int // new-or-reappeared jobs only, accumulates across upserts
}

// NormalizedJob is the canonical, source-agnostic record (silver tier),
// derived from the latest RawObservation plus classifier output.
type NormalizedJob struct {
	Source Source
	JobID  string

	Title     string
	Company   string
	Location  string
	City      string
	County    string
	State     string
	StateCode string
	CBSACode  string

	Category      string
	CategoryLabel string

	SalaryMin float64
	SalaryMax float64
	HasSalary bool

	PostDate  time.Time // zero if the source gave no post date
	FirstSeen time.Time
	LastSeen  time.Time
	TimesSeen int
	IsActive  bool

	URL       string
	Latitude  float64
	Longitude float64

	Seniority Seniority
	IsRemote  bool
	Industry  string
	JobType   string
	YOEMin    int    // 0 = no rule fired
	Education string // "" = no rule fired

	ProcessedAt time.Time
}

// CityDayStats is one gold-tier aggregate row per (city, state, run date).
type CityDayStats struct {
	City    string
	State   string
	RunDate time.Time

	TotalJobs       int
	ActiveJobs      int
	NewJobs         int
	ExpiredJobs     int
	JobsWithSalary  int
	AvgSalaryMin    float64
	AvgSalaryMax    float64
	MedianSalaryMin float64
	MedianSalaryMax float64
	RemoteJobs      int
	FulltimeJobs    int
	JuniorJobs      int
	MidJobs         int
	SeniorJobs      int
}

// CitySnapshot is the gold-tier "latest" row per (city, state).
type CitySnapshot struct {
	City  string
	State string

	ActiveJobs       int
	NewJobs7d        int
	NewJobs30d       int
	AvgSalary        float64
	JobGrowthRate7d  float64
	JobGrowthRate30d float64
	TopCategories    []string // top 5 category labels by active-job count
}

// HousingMetric is one silver-tier housing index row derived from a CSV load.
type HousingMetric struct {
	RegionID     int64
	SizeRank     int64
	RegionName   string
	StateCode    string
	DataSource   string
	MetricType   string
	Value        float64
	DateRecorded string // YYYY-MM-DD column name from the source file
	ProcessedAt  time.Time
}
