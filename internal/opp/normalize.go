package opp

import (
	"strconv"

	"oppmap-go/internal/model"
)

// Normalizer enforces the declared schema on raw datasets. Every row is
// coerced, never dropped: missing or unparseable values are replaced by
// type-specific defaults so the result always carries the full column set.
type Normalizer struct {
	clock Clock
	idgen IDGenerator
}

func NewNormalizer(clock Clock, idgen IDGenerator) *Normalizer {
	return &Normalizer{clock: clock, idgen: idgen}
}

// Normalize converts a raw dataset into opportunity records. Defaults:
// numeric columns 5.0, Type/Status the first enum value, Created/Modified
// the current time, text columns empty. A row without a UUID gets a fresh
// one, since the UUID is the record's only stable identity. Stored Score
// values are kept as-is even when inconsistent with Impact/Complexity;
// the next reorder corrects them.
func (n *Normalizer) Normalize(ds *model.Dataset) []model.Opportunity {
	if ds == nil {
		return []model.Opportunity{}
	}

	now := n.clock.Now().Format(model.TimeLayout)
	records := make([]model.Opportunity, 0, len(ds.Rows))

	for _, row := range ds.Rows {
		rec := model.Opportunity{
			ID:          intOr(row[model.ColID], 0),
			UUID:        row[model.ColUUID],
			Opportunity: row[model.ColOpportunity],
			RelatedTo:   row[model.ColRelatedTo],
			Area:        row[model.ColArea],
			Type:        model.Type(row[model.ColType]),
			Topic:       row[model.ColTopic],
			Impact:      floatOr(row[model.ColImpact], 5.0),
			Complexity:  floatOr(row[model.ColComplexity], 5.0),
			Score:       floatOr(row[model.ColScore], 5.0),
			Status:      model.Status(row[model.ColStatus]),
			Created:     row[model.ColCreated],
			Modified:    row[model.ColModified],
		}

		if rec.UUID == "" {
			rec.UUID = n.idgen.New()
		}
		if rec.Type == "" {
			rec.Type = model.Types[0]
		}
		if rec.Status == "" {
			rec.Status = model.Statuses[0]
		}
		if rec.Created == "" {
			rec.Created = now
		}
		if rec.Modified == "" {
			rec.Modified = now
		}

		records = append(records, rec)
	}

	return records
}

// floatOr parses a numeric cell with 1-decimal rounding, falling back to
// def for missing or unparseable values.
func floatOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return round1(v)
}

// intOr parses an integer cell, falling back to def. IDs are reassigned
// on the next reorder anyway, so a bad value is harmless.
func intOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
