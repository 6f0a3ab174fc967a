package model

import "github.com/google/uuid"

// ReportRow is a PatientReport keyed for the patient_reports table.
type ReportRow struct {
	RunID  uuid.UUID
	Seq    int32
	Report PatientReport
}

// CopyColumns returns the patient_reports column names in COPY order.
func CopyColumns() []string {
	return append([]string{"run_id", "seq"}, ReportColumns()...)
}

// CopyValues returns the row's values in CopyColumns order.
func (r *ReportRow) CopyValues() []any {
	return append([]any{r.RunID, r.Seq}, r.Report.Values()...)
}
