// Package classify holds the pure enrichment heuristics: seniority
// classification and the field extractors that turn raw posting text into
// normalized attributes. Every function is total and side-effect free; the
// keyword tables live in tables.go as static configuration data.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avelez-dev/jobradar/internal/model"
)

// yoePatterns are tried in order; the first match wins. Ranges capture the
// lower bound in group 1 to bias toward the more conservative estimate.
var yoePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*years?`),
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?|yos?)`),
	regexp.MustCompile(`at\s*least\s*(\d+)\s*years?`),
	regexp.MustCompile(`minimum\s*(?:of\s*)?(\d+)\s*years?`),
}

var levelPattern = regexp.MustCompile(`\b(level\s*(i|ii|iii|iv|v))\b`)

var seniorTags = []string{"sr", "lead", "principal", "director", "head", "vp", "executive", "team lead"}

var juniorTags = []string{"jr", "associate", "junior", "intern"}

// Seniority classifies a posting as junior, mid or senior. Precedence:
// explicit years-of-experience, then a "level N" marker in the title, then
// senior keywords in title+description, then junior keywords in the title
// only. Anything else defaults to mid (the no-signal case is deliberately
// mid, not junior).
func Seniority(title, description string) model.Seniority {
	txt := strings.ToLower(title + " " + description)

	for _, pat := range yoePatterns {
		m := pat.FindStringSubmatch(txt)
		if m == nil {
			continue
		}
		years, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch {
		case years <= 3:
			return model.SeniorityJunior
		case years <= 5:
			return model.SeniorityMid
		default:
			return model.SenioritySenior
		}
	}

	titleLower := strings.ToLower(title)
	if levelPattern.MatchString(titleLower) {
		parts := strings.Split(titleLower, "level")
		lvl := strings.TrimSpace(parts[len(parts)-1])
		switch lvl {
		case "i", "1":
			return model.SeniorityJunior
		case "ii", "2":
			return model.SeniorityMid
		default:
			return model.SenioritySenior
		}
	}

	for _, tag := range seniorTags {
		if strings.Contains(txt, tag) {
			return model.SenioritySenior
		}
	}
	for _, tag := range juniorTags {
		if strings.Contains(titleLower, tag) {
			return model.SeniorityJunior
		}
	}

	return model.SeniorityMid
}
