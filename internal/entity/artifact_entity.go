package entity

import (
	"time"
)

// Column value types carried in the artifact schema.
const (
	ColumnTypeString    = "string"
	ColumnTypeInteger   = "integer"
	ColumnTypeFloat     = "float"
	ColumnTypeBoolean   = "boolean"
	ColumnTypeTimestamp = "timestamp"
)

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Summary is the derived summary the analysis pipeline computes alongside the
// tabular result. The store persists it as-is.
type Summary struct {
	RecordCount    int64            `json:"record_count"`
	RecordsByType  map[string]int64 `json:"records_by_type,omitempty"`
	EarliestRecord *time.Time       `json:"earliest_record,omitempty"`
	LatestRecord   *time.Time       `json:"latest_record,omitempty"`
	Text           string           `json:"text,omitempty"`
}

// Artifact is the completed analysis result handed over by the analysis
// collaborator. The store owns its persistence, not its internal structure.
// Row values are rendered per the column type declared in Columns.
type Artifact struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary Summary    `json:"summary"`
}
