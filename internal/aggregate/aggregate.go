// Package aggregate folds evaluated patients into the submitted risk summary
// and the ordered report collection.
package aggregate

import "github.com/gyeh/vitalrisk/internal/model"

// Aggregator is owned by a single run and is not safe for concurrent use.
type Aggregator struct {
	highRisk    []string
	fever       []string
	dataQuality []string
	reports     []model.PatientReport
}

// Counts is a snapshot of how many ids each category holds.
type Counts struct {
	Records     int
	HighRisk    int
	Fever       int
	DataQuality int
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		highRisk:    []string{},
		fever:       []string{},
		dataQuality: []string{},
	}
}

// Add records one patient in arrival order. Ids are not deduplicated.
func (a *Aggregator) Add(p model.EvaluatedPatient) {
	if p.HighRisk {
		a.highRisk = append(a.highRisk, p.ID)
	}
	if p.Fever {
		a.fever = append(a.fever, p.ID)
	}
	if p.DataQualityIssue {
		a.dataQuality = append(a.dataQuality, p.ID)
	}
	a.reports = append(a.reports, p.Report())
}

// Summary returns a copy of the three id lists.
func (a *Aggregator) Summary() model.RiskSummary {
	return model.RiskSummary{
		HighRiskPatients:  append([]string{}, a.highRisk...),
		FeverPatients:     append([]string{}, a.fever...),
		DataQualityIssues: append([]string{}, a.dataQuality...),
	}
}

// Reports returns the display records in arrival order.
func (a *Aggregator) Reports() []model.PatientReport {
	return a.reports
}

// Counts reports how many reports and category ids have been collected.
func (a *Aggregator) Counts() Counts {
	return Counts{
		Records:     len(a.reports),
		HighRisk:    len(a.highRisk),
		Fever:       len(a.fever),
		DataQuality: len(a.dataQuality),
	}
}
