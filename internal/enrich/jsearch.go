package enrich

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avelez-dev/jobradar/internal/classify"
	"github.com/avelez-dev/jobradar/internal/model"
)

type jsearchPayload struct {
	Title          string   `json:"job_title"`
	Description    string   `json:"job_description"`
	Employer       string   `json:"employer_name"`
	EmployerType   string   `json:"employer_company_type"`
	Location       string   `json:"job_location"`
	City           string   `json:"job_city"`
	State          string   `json:"job_state"`
	ApplyLink      string   `json:"job_apply_link"`
	SalaryMin      *float64 `json:"job_min_salary"`
	SalaryMax      *float64 `json:"job_max_salary"`
	PostedAt       string   `json:"job_posted_at_datetime_utc"`
	EmploymentType string   `json:"job_employment_type"`
	Latitude       float64  `json:"job_latitude"`
	Longitude      float64  `json:"job_longitude"`
}

type jsearchNormalizer struct{}

func (jsearchNormalizer) Source() model.Source { return model.SourceJSearch }

// Normalize maps a JSearch payload onto the canonical record. JSearch gives
// "City, ST" locations and no county; a missing state field falls back to
// the trailing two-letter token of the location string.
func (jsearchNormalizer) Normalize(obs model.RawObservation, runDate time.Time) (model.NormalizedJob, error) {
	var p jsearchPayload
	if err := json.Unmarshal(obs.Payload, &p); err != nil {
		return model.NormalizedJob{}, fmt.Errorf("parsing jsearch payload for %s: %w", obs.JobID, err)
	}

	stateCode := classify.StateAbbreviation(p.State)
	if stateCode == "" && p.Location != "" {
		parts := strings.Split(p.Location, ", ")
		if len(parts) >= 2 {
			last := strings.TrimSpace(parts[len(parts)-1])
			if len(last) == 2 {
				stateCode = strings.ToUpper(last)
			}
		}
	}

	var cbsa string
	if p.City != "" && len(stateCode) == 2 {
		cbsa = classify.MetroCode(p.City + ", " + stateCode)
	}

	postDate := model.Day(runDate)
	if p.PostedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.PostedAt); err == nil {
			postDate = model.Day(t)
		}
	}

	j := model.NormalizedJob{
		Source: model.SourceJSearch,
		JobID:  obs.JobID,

		Title:     p.Title,
		Company:   p.Employer,
		Location:  p.Location,
		City:      p.City,
		County:    "", // JSearch does not report counties
		State:     p.State,
		StateCode: stateCode,
		CBSACode:  cbsa,

		Category:      p.EmployerType,
		CategoryLabel: p.EmployerType,

		PostDate:  postDate,
		FirstSeen: obs.FirstSeen,
		LastSeen:  obs.LastSeen,
		TimesSeen: obs.TimesSeen,
		IsActive:  obs.LastSeen.Equal(model.Day(runDate)),

		URL:       p.ApplyLink,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,

		Seniority: classify.Seniority(p.Title, p.Description),
		IsRemote:  classify.IsRemote(p.Title, p.Description),
		Industry:  classify.Industry(p.Title, p.Employer, p.EmployerType),
		JobType:   classify.StandardizeJobType(p.EmploymentType, p.Title, p.Description, model.SourceJSearch),
		Education: classify.Education(p.Description),

		ProcessedAt: time.Now().UTC(),
	}

	if p.SalaryMin != nil {
		j.HasSalary = true
		j.SalaryMin = *p.SalaryMin
		if p.SalaryMax != nil {
			j.SalaryMax = *p.SalaryMax
		}
	}
	if yoe, ok := classify.YearsOfExperience(p.Description); ok {
		j.YOEMin = yoe
	}

	return j, nil
}
