// Package assess runs one end-to-end risk assessment: it walks the patient
// pages, evaluates and aggregates every record, persists the report and
// submits the summary.
package assess
