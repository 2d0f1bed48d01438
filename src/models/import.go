package models

import (
	"fmt"
	"time"
)

// RawRow is one parsed CSV record keyed by the original header names.
type RawRow map[string]string

// ColumnMapping maps a canonical trade field key to the source CSV header
// that supplies it. Built once per import and read-only afterwards.
type ColumnMapping map[string]string

// CSVPreview is the result of the header-reading step.
type CSVPreview struct {
	Headers []string `json:"headers"`
	Rows    []RawRow `json:"data"`
}

// ImportWarning records one non-fatal anomaly hit while coercing a row.
// Rendered to a flat string at the API boundary.
type ImportWarning struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func (w ImportWarning) String() string {
	return fmt.Sprintf("Row %d: %s", w.Row, w.Reason)
}

// RenderWarnings flattens structured warnings into the human-readable audit
// trail returned to the client.
func RenderWarnings(warnings []ImportWarning) []string {
	rendered := make([]string, 0, len(warnings))
	for _, w := range warnings {
		rendered = append(rendered, w.String())
	}
	return rendered
}

// ImportSession holds an uploaded file between the preview and commit steps.
// The raw bytes are kept so commit can re-parse the complete dataset rather
// than the capped preview slice.
type ImportSession struct {
	ID               string        `json:"id"`
	UserID           string        `json:"-"`
	FileName         string        `json:"file_name"`
	Content          []byte        `json:"-"`
	Headers          []string      `json:"headers"`
	SuggestedMapping ColumnMapping `json:"suggested_mapping"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ImportPreview is the response of the preview endpoint.
type ImportPreview struct {
	SessionID        string        `json:"session_id"`
	FileName         string        `json:"file_name"`
	Headers          []string      `json:"headers"`
	Rows             []RawRow      `json:"data"`
	SuggestedMapping ColumnMapping `json:"suggested_mapping"`
}

// ImportResult is the response of the commit endpoint.
type ImportResult struct {
	ImportBatch string   `json:"import_batch"`
	Total       int      `json:"total"`
	Inserted    int      `json:"inserted"`
	Duplicates  int      `json:"duplicates"`
	Warnings    []string `json:"warnings"`
}
