package model

import (
	"encoding/json"

	"github.com/gyeh/vitalrisk/internal/score"
)

// Risk levels assigned from the total risk score.
const (
	LowRisk  = "LOW RISK"
	HighRisk = "HIGH RISK"

	// HighRiskThreshold is the lowest total score classified as HighRisk.
	HighRiskThreshold = 4
)

// Text is a string field that tolerates non-string JSON. Numbers and other
// literals keep their raw JSON text; null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

// RawPatientRecord is one patient as delivered by the assessment API.
// The vital-sign fields hold whatever JSON value arrived (nil when absent).
type RawPatientRecord struct {
	ID            Text `json:"patient_id"`
	Name          Text `json:"name"`
	Age           any  `json:"age"`
	Gender        Text `json:"gender,omitempty"`
	BloodPressure any  `json:"blood_pressure"`
	Temperature   any  `json:"temperature"`
	VisitDate     Text `json:"visit_date,omitempty"`
	Diagnosis     Text `json:"diagnosis,omitempty"`
	Medications   Text `json:"medications,omitempty"`
}

// EvaluatedPatient is the scored form of one RawPatientRecord.
type EvaluatedPatient struct {
	ID   string
	Name string

	AgeScore           score.Score
	BloodPressureScore score.Score
	TemperatureScore   score.Score

	// Display strings embed the effective (0-substituted) field score.
	AgeDisplay           string
	BloodPressureDisplay string
	TemperatureDisplay   string
	TotalRiskDisplay     string

	TotalRisk        int
	RiskLevel        string
	HighRisk         bool
	Fever            bool
	DataQualityIssue bool
}

// Report projects the patient onto its display-only record.
func (p EvaluatedPatient) Report() PatientReport {
	return PatientReport{
		PatientID:        p.ID,
		Name:             p.Name,
		Age:              p.AgeDisplay,
		BloodPressure:    p.BloodPressureDisplay,
		Temperature:      p.TemperatureDisplay,
		TotalRisk:        p.TotalRiskDisplay,
		RiskLevel:        p.RiskLevel,
		HighRisk:         p.HighRisk,
		Fever:            p.Fever,
		DataQualityIssue: p.DataQualityIssue,
	}
}

// PatientReport is the persisted, display-only view of an evaluated patient.
type PatientReport struct {
	PatientID        string `json:"patient_id" parquet:"patient_id"`
	Name             string `json:"name" parquet:"name"`
	Age              string `json:"age" parquet:"age"`
	BloodPressure    string `json:"blood_pressure" parquet:"blood_pressure"`
	Temperature      string `json:"temperature" parquet:"temperature"`
	TotalRisk        string `json:"total_risk" parquet:"total_risk"`
	RiskLevel        string `json:"risk_level" parquet:"risk_level"`
	HighRisk         bool   `json:"high_risk" parquet:"high_risk"`
	Fever            bool   `json:"fever" parquet:"fever"`
	DataQualityIssue bool   `json:"data_quality_issue" parquet:"data_quality_issue"`
}

// ReportColumns lists the PatientReport columns in persistence order.
func ReportColumns() []string {
	return []string{
		"patient_id", "name", "age", "blood_pressure", "temperature",
		"total_risk", "risk_level", "high_risk", "fever", "data_quality_issue",
	}
}

// Values returns the report fields in ReportColumns order.
func (r *PatientReport) Values() []any {
	return []any{
		r.PatientID, r.Name, r.Age, r.BloodPressure, r.Temperature,
		r.TotalRisk, r.RiskLevel, r.HighRisk, r.Fever, r.DataQualityIssue,
	}
}
