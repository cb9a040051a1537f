package opp

import "oppmap-go/internal/model"

// Criteria selects a subset of records for display or export. An empty
// dimension means "no filtering on that dimension", matching the UI
// collaborator's select-all default.
type Criteria struct {
	Types    []string
	Areas    []string
	Statuses []string
}

// Apply returns the records matching all non-empty dimensions.
func (c Criteria) Apply(records []model.Opportunity) []model.Opportunity {
	out := make([]model.Opportunity, 0, len(records))
	for _, rec := range records {
		if !matches(c.Types, string(rec.Type)) {
			continue
		}
		if !matches(c.Areas, rec.Area) {
			continue
		}
		if !matches(c.Statuses, string(rec.Status)) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matches(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
