package classify

import (
	"strconv"
	"strings"

	"github.com/avelez-dev/jobradar/internal/model"
)

var remoteKeywords = []string{"remote", "work from home", "wfh"}

// IsRemote reports whether the posting text signals a remote role.
func IsRemote(title, description string) bool {
	txt := strings.ToLower(title + " " + description)
	for _, kw := range remoteKeywords {
		if strings.Contains(txt, kw) {
			return true
		}
	}
	return false
}

// JobType infers the employment type from posting text. An internship in the
// title wins; otherwise the description is scanned for part time, full time
// and contract in that order. No signal means full-time.
func JobType(title, description string) string {
	titleLower := strings.ToLower(title)
	if strings.Contains(titleLower, "intern") || strings.Contains(titleLower, "internship") {
		return "intern"
	}
	descLower := strings.ToLower(description)
	switch {
	case strings.Contains(descLower, "part time"):
		return "part-time"
	case strings.Contains(descLower, "full time"):
		return "full-time"
	case strings.Contains(descLower, "contract"):
		return "contract"
	}
	return "full-time"
}

// StandardizeJobType reconciles per-source employment-type conventions.
// Adzuna does not supply a usable type field, so the text heuristic decides;
// JSearch supplies a vendor string ("Full-time and Part-time") that is
// cleaned through the vendor table. The fallback assumption is full-time.
func StandardizeJobType(rawType, title, description string, source model.Source) string {
	switch {
	case source == model.SourceAdzuna:
		return JobType(title, description)
	case source == model.SourceJSearch && rawType != "":
		return cleanVendorJobType(rawType)
	}
	return "full-time"
}

// cleanVendorJobType takes the first value of a multi-type vendor string and
// maps it through the canonical-term table, lowercasing unknown terms.
func cleanVendorJobType(rawType string) string {
	primary := rawType
	if idx := strings.Index(rawType, " and "); idx >= 0 {
		primary = rawType[:idx]
	}
	if canonical, ok := vendorJobTypes[primary]; ok {
		return canonical
	}
	return strings.ToLower(primary)
}

// YearsOfExperience extracts the minimum years-of-experience requirement
// from the description. Ranges yield the lower bound. Returns (0, false)
// when no pattern matches.
func YearsOfExperience(description string) (int, bool) {
	txt := strings.ToLower(description)
	for _, pat := range yoePatterns {
		m := pat.FindStringSubmatch(txt)
		if m == nil {
			continue
		}
		years, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return years, true
	}
	return 0, false
}

// Education returns the highest education level mentioned in the description,
// or "" when no rule fires. The table is scanned highest-first so "BS
// required, MS preferred" reports the master's.
func Education(description string) string {
	descLower := strings.ToLower(description)
	for _, level := range educationLevels {
		for _, kw := range level.keywords {
			if strings.Contains(descLower, kw) {
				return level.name
			}
		}
	}
	return ""
}

// Industry infers an industry bucket from company and title keywords,
// falling back to "" when nothing matches. The category label from the
// source is not consulted here; callers may use it as their own fallback.
func Industry(title, company, category string) string {
	titleLower := strings.ToLower(title)
	companyLower := strings.ToLower(company)

	for _, rule := range industryRules {
		for _, kw := range rule.companyKeywords {
			if strings.Contains(companyLower, kw) {
				return rule.name
			}
		}
		for _, kw := range rule.titleKeywords {
			if strings.Contains(titleLower, kw) {
				return rule.name
			}
		}
	}
	return ""
}

// MetroCode maps a "City, ST" location to its CBSA metro-area code, or ""
// when the metro is not in the lookup table.
func MetroCode(location string) string {
	return cbsaCodes[strings.ToLower(strings.TrimSpace(location))]
}

// StateAbbreviation converts a full US state name to its two-letter code.
// A valid two-letter code passes through uppercased; anything unrecognized
// is returned unchanged, never empty for non-empty input.
func StateAbbreviation(input string) string {
	if input == "" {
		return ""
	}
	normalized := strings.ToLower(strings.TrimSpace(input))
	if len(normalized) == 2 {
		upper := strings.ToUpper(normalized)
		if validStateCodes[upper] {
			return upper
		}
	}
	if abbrev, ok := stateAbbrevs[normalized]; ok {
		return abbrev
	}
	return input
}
