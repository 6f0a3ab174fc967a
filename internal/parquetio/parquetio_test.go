package parquetio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/vitalrisk/internal/model"
)

func sampleReports() []model.PatientReport {
	return []model.PatientReport{
		{PatientID: "A", Name: "Alpha", Age: "70 (score: 2)", BloodPressure: "150/95 (score: 3)",
			Temperature: "103 (score: 2)", TotalRisk: "7 (HIGH RISK)", RiskLevel: model.HighRisk,
			HighRisk: true, Fever: true},
		{PatientID: "B", Name: "Bravo", Age: "?? (score: 0)", BloodPressure: "110/70 (score: 0)",
			Temperature: "98.2 (score: 0)", TotalRisk: "0 (LOW RISK)", RiskLevel: model.LowRisk,
			DataQualityIssue: true},
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.parquet")
	require.NoError(t, Write(path, sampleReports()))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ValidateSchema(r.Schema()))
	assert.Equal(t, int64(2), r.NumRows())

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, sampleReports(), got)
}

func TestWrite_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, Write(path, nil))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, int64(0), r.NumRows())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}
