package enrich

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelez-dev/jobradar/internal/classify"
	"github.com/avelez-dev/jobradar/internal/model"
)

// adzunaPayload mirrors the fields we read from an Adzuna result document.
// Anything not listed still survives verbatim in the bronze payload.
type adzunaPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    struct {
		DisplayName string   `json:"display_name"`
		Area        []string `json:"area"`
		Latitude    float64  `json:"latitude"`
		Longitude   float64  `json:"longitude"`
	} `json:"location"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Category struct {
		Tag   string `json:"tag"`
		Label string `json:"label"`
	} `json:"category"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	Created     string   `json:"created"`
	RedirectURL string   `json:"redirect_url"`
}

type adzunaNormalizer struct{}

func (adzunaNormalizer) Source() model.Source { return model.SourceAdzuna }

// Normalize maps an Adzuna payload onto the canonical record. The location
// hierarchy is an address array ordered country → state → county → … → city;
// short arrays degrade to empty strings rather than indexing errors.
func (adzunaNormalizer) Normalize(obs model.RawObservation, runDate time.Time) (model.NormalizedJob, error) {
	var p adzunaPayload
	if err := json.Unmarshal(obs.Payload, &p); err != nil {
		return model.NormalizedJob{}, fmt.Errorf("parsing adzuna payload for %s: %w", obs.JobID, err)
	}

	area := p.Location.Area
	var city, county, state string
	if len(area) >= 4 {
		city = area[len(area)-1]
	}
	if len(area) >= 3 {
		county = area[2]
	}
	if len(area) >= 2 {
		state = area[1]
	}

	stateCode := classify.StateAbbreviation(state)
	if len(stateCode) != 2 {
		stateCode = ""
	}

	var cbsa string
	if city != "" && stateCode != "" {
		cbsa = classify.MetroCode(city + ", " + stateCode)
	}

	var postDate time.Time
	if p.Created != "" {
		if t, err := time.Parse(time.RFC3339, p.Created); err == nil {
			postDate = model.Day(t)
		}
	}

	j := model.NormalizedJob{
		Source: model.SourceAdzuna,
		JobID:  obs.JobID,

		Title:     p.Title,
		Company:   p.Company.DisplayName,
		Location:  p.Location.DisplayName,
		City:      city,
		County:    county,
		State:     state,
		StateCode: stateCode,
		CBSACode:  cbsa,

		Category:      p.Category.Tag,
		CategoryLabel: p.Category.Label,

		PostDate:  postDate,
		FirstSeen: obs.FirstSeen,
		LastSeen:  obs.LastSeen,
		TimesSeen: obs.TimesSeen,
		IsActive:  obs.LastSeen.Equal(model.Day(runDate)),

		URL:       p.RedirectURL,
		Latitude:  p.Location.Latitude,
		Longitude: p.Location.Longitude,

		Seniority: classify.Seniority(p.Title, p.Description),
		IsRemote:  classify.IsRemote(p.Title, p.Description),
		Industry:  classify.Industry(p.Title, p.Company.DisplayName, p.Category.Label),
		JobType:   classify.StandardizeJobType("", p.Title, p.Description, model.SourceAdzuna),
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
