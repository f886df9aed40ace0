package dto

import "time"

type CycleResponse struct {
	CycleID string `json:"cycle_id"`
}

type ListCyclesResponse struct {
	CycleIDs []string `json:"cycle_ids"`
}

type IngestResponse struct {
	Source        string   `json:"source"`
	RecordsParsed int      `json:"records_parsed"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
}

type SourceStatusResponse struct {
	Uploaded  bool       `json:"uploaded"`
	Records   int        `json:"records"`
	Skipped   int        `json:"skipped"`
	Errors    []string   `json:"errors"`
	Warnings  []string   `json:"warnings"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type StatusResponse struct {
	CycleID            string                          `json:"cycle_id"`
	Sources            map[string]SourceStatusResponse `json:"sources"`
	ValidationErrors   []string                        `json:"validation_errors"`
	ValidationWarnings []string                        `json:"validation_warnings"`
	LastUpdated        *time.Time                      `json:"last_updated,omitempty"`
	ReadyToAssign      bool                            `json:"ready_to_assign"`
}
