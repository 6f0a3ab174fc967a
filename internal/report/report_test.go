package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/parquetio"
)

func reports() []model.PatientReport {
	return []model.PatientReport{
		{PatientID: "A", Name: "Alpha", Age: "70 (score: 2)", BloodPressure: "150/95 (score: 3)",
			Temperature: "103 (score: 2)", TotalRisk: "7 (HIGH RISK)", RiskLevel: model.HighRisk,
			HighRisk: true, Fever: true},
		{PatientID: "B", Name: "Bravo", Age: "N/A (score: 0)", BloodPressure: "110/70 (score: 0)",
			Temperature: "98.2 (score: 0)", TotalRisk: "0 (LOW RISK)", RiskLevel: model.LowRisk,
			DataQualityIssue: true},
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("patients.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("patients"))
	assert.Equal(t, FormatParquet, FormatFromPath("out/patients.PARQUET"))
	assert.Equal(t, FormatXLSX, FormatFromPath("patients.xlsx"))
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("xlsx"))
	assert.False(t, ValidFormat("csv"))
}

func TestWriteFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "patients.json")
	require.NoError(t, WriteFile(path, "", reports()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []model.PatientReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, reports(), got)
	assert.Contains(t, string(data), `"total_risk": "7 (HIGH RISK)"`)
}

func TestWriteFile_JSONEmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, WriteFile(path, FormatJSON, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteFile_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.parquet")
	require.NoError(t, WriteFile(path, "", reports()))

	r, err := parquetio.Open(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, reports(), got)
}

func TestWriteFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.xlsx")
	require.NoError(t, WriteFile(path, FormatXLSX, reports()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, model.ReportColumns(), rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "7 (HIGH RISK)", rows[1][5])
	assert.Equal(t, "TRUE", rows[1][7])
	assert.Equal(t, "Bravo", rows[2][1])
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x.csv"), "csv", reports())
	assert.ErrorContains(t, err, "unsupported output format")
}
