package model

import "time"

// RiskSummary is the payload submitted at the end of a run.
type RiskSummary struct {
	HighRiskPatients  []string `json:"high_risk_patients"`
	FeverPatients     []string `json:"fever_patients"`
	DataQualityIssues []string `json:"data_quality_issues"`
}

// AssessmentSummary captures metrics from a single assessment run.
type AssessmentSummary struct {
	RunID            string         `json:"run_id"`
	PagesFetched     int            `json:"pages_fetched"`
	FetchAttempts    int            `json:"fetch_attempts"`
	RecordsEvaluated int            `json:"records_evaluated"`
	HighRiskCount    int            `json:"high_risk_count"`
	FeverCount       int            `json:"fever_count"`
	DataQualityCount int            `json:"data_quality_count"`
	OutputPath       string         `json:"output_path,omitempty"`
	RowsPersisted    int64          `json:"rows_persisted"`
	Submitted        bool           `json:"submitted"`
	Acknowledgment   map[string]any `json:"acknowledgment,omitempty"`
	DurationFetch    time.Duration  `json:"duration_fetch_ns"`
	DurationPersist  time.Duration  `json:"duration_persist_ns"`
	DurationSubmit   time.Duration  `json:"duration_submit_ns"`
	DurationTotal    time.Duration  `json:"duration_total_ns"`
}
