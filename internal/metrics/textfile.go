// Package metrics exports a finished run's summary in the Prometheus text
// exposition format, for pickup by a node_exporter textfile collector.
package metrics

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/gyeh/vitalrisk/internal/model"
)

const namespace = "vitalrisk"

type gauge struct {
	name  string
	help  string
	value float64
}

// Families builds one gauge family per summary metric, labelled with the run id.
func Families(s *model.AssessmentSummary) []*dto.MetricFamily {
	submitted := 0.0
	if s.Submitted {
		submitted = 1
	}
	gauges := []gauge{
		{"pages_fetched", "Pages fetched from the patient API.", float64(s.PagesFetched)},
		{"fetch_attempts", "Page fetch attempts, retries included.", float64(s.FetchAttempts)},
		{"records_evaluated", "Patient records evaluated.", float64(s.RecordsEvaluated)},
		{"high_risk_patients", "Patients at or above the high-risk threshold.", float64(s.HighRiskCount)},
		{"fever_patients", "Patients with a positive temperature score.", float64(s.FeverCount)},
		{"data_quality_issues", "Patients with at least one unscorable field.", float64(s.DataQualityCount)},
		{"summary_submitted", "1 if the risk summary was accepted.", submitted},
		{"run_duration_seconds", "Wall time of the run.", s.DurationTotal.Seconds()},
	}

	labels := []*dto.LabelPair{{Name: ptr("run_id"), Value: ptr(s.RunID)}}
	out := make([]*dto.MetricFamily, 0, len(gauges))
	for _, g := range gauges {
		out = append(out, &dto.MetricFamily{
			Name: ptr(namespace + "_" + g.name),
			Help: ptr(g.help),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Label: labels,
				Gauge: &dto.Gauge{Value: ptr(g.value)},
			}},
		})
	}
	return out
}

// WriteTextfile renders the summary and atomically replaces path with it.
func WriteTextfile(path string, s *model.AssessmentSummary) error {
	var buf bytes.Buffer
	for _, mf := range Families(s) {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".vitalrisk-metrics-*")
	if err != nil {
		return fmt.Errorf("create temp metrics file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close metrics: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename metrics: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
