// Package evaluate turns raw patient records into scored, classified patients.
package evaluate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/normalize"
	"github.com/gyeh/vitalrisk/internal/score"
)

// BatchError reports a record collection that is not a sequence of patient
// objects. It aborts the whole batch.
type BatchError struct {
	Index   int
	Payload json.RawMessage
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("record %d is not a patient object: %s", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Patient scores one record. Malformed fields become Unscorable and set the
// data-quality flag; Patient never fails.
func Patient(rec model.RawPatientRecord) model.EvaluatedPatient {
	age := score.Age(rec.Age)
	bp := score.BloodPressure(rec.BloodPressure)
	temp := score.Temperature(rec.Temperature)

	total := age.Effective() + bp.Effective() + temp.Effective()

	level := model.LowRisk
	if total >= model.HighRiskThreshold {
		level = model.HighRisk
	}

	return model.EvaluatedPatient{
		ID:   string(rec.ID),
		Name: string(rec.Name),

		AgeScore:           age,
		BloodPressureScore: bp,
		TemperatureScore:   temp,

		AgeDisplay:           fieldDisplay(rec.Age, age),
		BloodPressureDisplay: fieldDisplay(rec.BloodPressure, bp),
		TemperatureDisplay:   fieldDisplay(rec.Temperature, temp),
		TotalRiskDisplay:     fmt.Sprintf("%d (%s)", total, level),

		TotalRisk:        total,
		RiskLevel:        level,
		HighRisk:         total >= model.HighRiskThreshold,
		Fever:            temp.Effective() > 0,
		DataQualityIssue: !age.IsScored() || !bp.IsScored() || !temp.IsScored(),
	}
}

// Batch decodes every record of a page and, only if all of them decode,
// evaluates them in order and hands each result to fn.
func Batch(records []json.RawMessage, fn func(model.EvaluatedPatient)) error {
	decoded := make([]model.RawPatientRecord, len(records))
	for i, raw := range records {
		rec, err := DecodeRecord(raw)
		if err != nil {
			return &BatchError{Index: i, Payload: raw, Err: err}
		}
		decoded[i] = rec
	}
	for _, rec := range decoded {
		fn(Patient(rec))
	}
	return nil
}

// DecodeRecord decodes one record. Numbers in the vital-sign fields stay
// json.Number, so literals outside float64 range reach the scorers intact.
func DecodeRecord(raw json.RawMessage) (model.RawPatientRecord, error) {
	var rec model.RawPatientRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return model.RawPatientRecord{}, err
	}
	return rec, nil
}

func fieldDisplay(raw any, s score.Score) string {
	return fmt.Sprintf("%s (score: %d)", normalize.Display(raw), s.Effective())
}
