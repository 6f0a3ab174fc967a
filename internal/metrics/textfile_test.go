package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/vitalrisk/internal/model"
)

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitalrisk.prom")
	s := &model.AssessmentSummary{
		RunID:            "run-1",
		PagesFetched:     3,
		FetchAttempts:    5,
		RecordsEvaluated: 47,
		HighRiskCount:    9,
		FeverCount:       4,
		DataQualityCount: 6,
		Submitted:        true,
		DurationTotal:    1500 * time.Millisecond,
	}
	require.NoError(t, WriteTextfile(path, s))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(f)
	require.NoError(t, err)
	assert.Len(t, mfs, 8)

	value := func(name string) float64 {
		mf, ok := mfs[name]
		require.True(t, ok, name)
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		assert.Equal(t, "run_id", m.GetLabel()[0].GetName())
		assert.Equal(t, "run-1", m.GetLabel()[0].GetValue())
		return m.GetGauge().GetValue()
	}
	assert.Equal(t, 3.0, value("vitalrisk_pages_fetched"))
	assert.Equal(t, 5.0, value("vitalrisk_fetch_attempts"))
	assert.Equal(t, 47.0, value("vitalrisk_records_evaluated"))
	assert.Equal(t, 9.0, value("vitalrisk_high_risk_patients"))
	assert.Equal(t, 1.0, value("vitalrisk_summary_submitted"))
	assert.Equal(t, 1.5, value("vitalrisk_run_duration_seconds"))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".vitalrisk-metrics-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteTextfile_MissingDir(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "nope", "x.prom"), &model.AssessmentSummary{})
	assert.Error(t, err)
}
