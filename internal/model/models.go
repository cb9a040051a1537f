package model

// Type classifies an opportunity as an enabler or a lever.
type Type string

const (
	TypeEnabler Type = "Enabler"
	TypeLever   Type = "Lever"
)

// Types lists all valid Type values in display order.
// The first entry is the default for new and backfilled records.
var Types = []Type{TypeEnabler, TypeLever}

// Status tracks an opportunity through its lifecycle.
type Status string

const (
	StatusIdea          Status = "Idea"
	StatusToExplore     Status = "To explore"
	StatusValidated     Status = "Validated"
	StatusInDevelopment Status = "In development"
	StatusDeployed      Status = "Deployed"
)

// Statuses lists all valid Status values in display order.
// The first entry is the default for new and backfilled records.
var Statuses = []Status{StatusIdea, StatusToExplore, StatusValidated, StatusInDevelopment, StatusDeployed}

// TimeLayout is the timestamp format used for the Created and Modified columns.
const TimeLayout = "2006-01-02 15:04"

// Column names, in persisted order.
const (
	ColID          = "ID"
	ColUUID        = "UUID"
	ColOpportunity = "Opportunity"
	ColRelatedTo   = "Related to"
	ColArea        = "Area"
	ColType        = "Type"
	ColTopic       = "Topic"
	ColImpact      = "Impact"
	ColComplexity  = "Complexity"
	ColScore       = "Score"
	ColStatus      = "Status"
	ColCreated     = "Created"
	ColModified    = "Modified"
)

// Columns is the declared column set of the record store, in persisted
// order. Every durable file (live store, snapshots, uploads, exports)
// carries exactly these columns.
var Columns = []string{
	ColID, ColUUID, ColOpportunity, ColRelatedTo, ColArea, ColType,
	ColTopic, ColImpact, ColComplexity, ColScore, ColStatus,
	ColCreated, ColModified,
}

// Opportunity is a candidate initiative scored by impact and complexity.
type Opportunity struct {
	ID          int     `json:"ID"`          // Dense rank 1..N, reassigned on every mutation
	UUID        string  `json:"UUID"`        // Short opaque id, stable across rank changes
	Opportunity string  `json:"Opportunity"` // Required description
	RelatedTo   string  `json:"Related to"`
	Area        string  `json:"Area"`
	Type        Type    `json:"Type"`
	Topic       string  `json:"Topic"`
	Impact      float64 `json:"Impact"`     // [0,10], 1 decimal
	Complexity  float64 `json:"Complexity"` // [0,10], 1 decimal
	Score       float64 `json:"Score"`      // Derived from Impact/Complexity
	Status      Status  `json:"Status"`
	Created     string  `json:"Created"`  // Set once, TimeLayout
	Modified    string  `json:"Modified"` // Stamped on every successful mutation
}

// RawRecord is one row of a tabular file before normalization, keyed by
// column name. A missing key means the source file lacked that column.
type RawRecord map[string]string

// Dataset is the raw content of a tabular file: the header as found in
// the file plus one RawRecord per row. Columns is kept separately so
// schema validation works even when the file has no rows.
type Dataset struct {
	Columns []string
	Rows    []RawRecord
}

// HasColumn reports whether the dataset header contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}
