package dashboard

import "strings"

// HigherEdKeywords classifies milestones as higher-education achievements by
// case-insensitive substring match on the free-text title. Milestones have no
// structured category column; this keyword heuristic is inherited from the
// data model as-is and is a known gap, not something to silently redesign.
var HigherEdKeywords = []string{
	"College",
	"FAFSA",
	"Scholarship",
	"University",
	"Degree",
}

// IsHigherEdMilestone reports whether a milestone title matches any
// higher-education keyword. The SQL side applies the same list via ILIKE;
// this is the in-process twin used by fixtures and anywhere rows are already
// in memory.
func IsHigherEdMilestone(title string) bool {
	lowered := strings.ToLower(title)
	for _, kw := range HigherEdKeywords {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
