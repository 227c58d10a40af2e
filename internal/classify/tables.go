package classify

// Static lookup tables backing the extractors. These are configuration data:
// extending a table changes behavior without touching any algorithm.

var stateAbbrevs = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

var validStateCodes = func() map[string]bool {
	codes := make(map[string]bool, len(stateAbbrevs))
	for _, code := range stateAbbrevs {
		codes[code] = true
	}
	return codes
}()

// vendorJobTypes maps JSearch employment-type terms to canonical values.
var vendorJobTypes = map[string]string{
	"Full-time":  "full-time",
	"Part-time":  "part-time",
	"Contract":   "contract",
	"Internship": "internship",
	"Temporary":  "temporary",
}

// cbsaCodes maps lowercased "city, st" to the CBSA metro-area identifier.
var cbsaCodes = map[string]string{
	"chicago, il":      "16980",
	"detroit, mi":      "19820",
	"new york, ny":     "35620",
	"los angeles, ca":  "31080",
	"houston, tx":      "26420",
	"dallas, tx":       "19100",
	"philadelphia, pa": "37980",
	"atlanta, ga":      "12060",
	"boston, ma":       "14460",
	"san francisco, ca": "41860",
	"seattle, wa":      "42660",
	"minneapolis, mn":  "33460",
	"denver, co":       "19740",
	"austin, tx":       "12420",
	"washington, dc":   "47900",
}

type educationLevel struct {
	name     string
	keywords []string
}

// educationLevels is ordered highest degree first.
var educationLevels = []educationLevel{
	{"phd", []string{"phd", "ph.d", "doctorate", "doctoral"}},
	{"master", []string{"master's", "masters degree", "master of", "ms preferred", "m.s.", "mba"}},
	{"bachelor", []string{"bachelor", "ba/bs", "b.s.", "b.a.", "undergraduate degree"}},
	{"associate", []string{"associate degree", "associate's degree"}},
}

type industryRule struct {
	name            string
	companyKeywords []string
	titleKeywords   []string
}

// industryRules is scanned in order; the first hit wins.
var industryRules = []industryRule{
	{"big_tech", []string{"google", "microsoft", "amazon", "apple", "meta", "netflix", "tesla", "uber", "airbnb"}, nil},
	{"finance", []string{"jpmorgan", "goldman", "morgan stanley", "wells fargo", "bank of america", "citi"}, nil},
	{"consulting", []string{"mckinsey", "bain", "bcg", "deloitte", "pwc", "accenture", "kpmg"}, nil},
	{"pharma", []string{"pfizer", "merck", "johnson", "roche", "novartis", "astrazeneca"}, nil},
	{"fintech", []string{"stripe", "square", "robinhood", "coinbase"}, []string{"fintech"}},
	{"healthcare", []string{"health", "medical", "hospital"}, []string{"healthcare", "nurse", "clinical"}},
}
