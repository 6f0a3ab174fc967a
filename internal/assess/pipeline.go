package assess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/vitalrisk/internal/aggregate"
	"github.com/gyeh/vitalrisk/internal/config"
	"github.com/gyeh/vitalrisk/internal/evaluate"
	"github.com/gyeh/vitalrisk/internal/fetch"
	"github.com/gyeh/vitalrisk/internal/metrics"
	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/report"
)

// Pipeline phases reported in PipelineError.
const (
	PhaseFetch    = "fetch"
	PhaseEvaluate = "evaluate"
	PhasePersist  = "persist"
	PhaseSubmit   = "submit"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// PageWalker walks every page of the patient collection. *fetch.Paginator satisfies it.
type PageWalker interface {
	FetchAll(ctx context.Context, consume func([]json.RawMessage) error, pageSize int) (*fetch.WalkStats, error)
}

// Submitter delivers the risk summary. *submit.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, summary model.RiskSummary) (map[string]any, error)
}

// Store records runs and their reports. *db.Store satisfies it.
type Store interface {
	StartRun(ctx context.Context, runID uuid.UUID, baseURL string) error
	SaveReports(ctx context.Context, runID uuid.UUID, reports []model.PatientReport) (int64, error)
	FinishRun(ctx context.Context, runID uuid.UUID, summary *model.AssessmentSummary, runErr error) error
}

// Deps are the collaborators of a run. Store may be nil.
type Deps struct {
	Walker    PageWalker
	Submitter Submitter
	Store     Store
}

// Run executes one assessment: fetch → evaluate → persist → submit.
// A failed walk submits nothing. A failed submission leaves the persisted
// report in place.
func Run(ctx context.Context, deps Deps, log zerolog.Logger, cfg *config.Config) (*model.AssessmentSummary, error) {
	totalStart := time.Now()
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	summary := &model.AssessmentSummary{RunID: runID.String()}

	if deps.Store != nil {
		if err := deps.Store.StartRun(ctx, runID, cfg.BaseURL); err != nil {
			return nil, &PipelineError{Phase: PhasePersist, Err: err}
		}
	}

	fail := func(phase string, err error) (*model.AssessmentSummary, error) {
		pErr := &PipelineError{Phase: phase, Err: err}
		summary.DurationTotal = time.Since(totalStart)
		if deps.Store != nil {
			// The run context may already be cancelled.
			if fErr := deps.Store.FinishRun(context.WithoutCancel(ctx), runID, summary, pErr); fErr != nil {
				log.Warn().Err(fErr).Msg("recording failed run (non-fatal)")
			}
		}
		return nil, pErr
	}

	// Phase 1: Fetch and evaluate
	log.Info().Int("page_size", cfg.PageSize).Msg("starting fetch")
	fetchStart := time.Now()
	agg := aggregate.New()
	consume := func(records []json.RawMessage) error {
		return evaluate.Batch(records, func(p model.EvaluatedPatient) {
			log.Debug().
				Str("patient_id", p.ID).
				Int("total_risk", p.TotalRisk).
				Bool("data_quality_issue", p.DataQualityIssue).
				Msg("patient evaluated")
			agg.Add(p)
		})
	}

	stats, err := deps.Walker.FetchAll(ctx, consume, cfg.PageSize)
	if stats != nil {
		summary.PagesFetched = stats.Pages
		summary.FetchAttempts = stats.Attempts
	}
	summary.DurationFetch = time.Since(fetchStart)
	if err != nil {
		var batchErr *evaluate.BatchError
		if errors.As(err, &batchErr) {
			log.Error().
				Int("index", batchErr.Index).
				RawJSON("payload", rawOrNull(batchErr.Payload)).
				Msg("record could not be decoded")
			return fail(PhaseEvaluate, err)
		}
		return fail(PhaseFetch, err)
	}

	counts := agg.Counts()
	summary.RecordsEvaluated = counts.Records
	summary.HighRiskCount = counts.HighRisk
	summary.FeverCount = counts.Fever
	summary.DataQualityCount = counts.DataQuality

	log.Info().
		Int("pages", summary.PagesFetched).
		Int("attempts", summary.FetchAttempts).
		Int("records", summary.RecordsEvaluated).
		Str("duration", summary.DurationFetch.String()).
		Msg("fetch complete")

	// Phase 2: Persist
	persistStart := time.Now()
	reports := agg.Reports()
	if err := report.WriteFile(cfg.OutputPath, cfg.Format(), reports); err != nil {
		return fail(PhasePersist, err)
	}
	summary.OutputPath = cfg.OutputPath
	log.Info().Str("path", cfg.OutputPath).Str("format", cfg.Format()).Int("reports", len(reports)).Msg("report written")

	if deps.Store != nil {
		rows, err := deps.Store.SaveReports(ctx, runID, reports)
		if err != nil {
			return fail(PhasePersist, err)
		}
		summary.RowsPersisted = rows
	}
	summary.DurationPersist = time.Since(persistStart)

	// Phase 3: Submit
	if cfg.DryRun {
		log.Info().Msg("dry run, skipping submission")
	} else {
		submitStart := time.Now()
		ack, err := deps.Submitter.Submit(ctx, agg.Summary())
		summary.DurationSubmit = time.Since(submitStart)
		if err != nil {
			return fail(PhaseSubmit, err)
		}
		summary.Submitted = true
		summary.Acknowledgment = ack
		log.Info().Interface("acknowledgment", ack).Msg("summary accepted")
	}

	summary.DurationTotal = time.Since(totalStart)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile, summary); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("metrics file write failed (non-fatal)")
		}
	}

	if deps.Store != nil {
		if err := deps.Store.FinishRun(ctx, runID, summary, nil); err != nil {
			log.Warn().Err(err).Msg("recording run outcome failed (non-fatal)")
		}
	}

	log.Info().
		Int("records", summary.RecordsEvaluated).
		Int("high_risk", summary.HighRiskCount).
		Int("fever", summary.FeverCount).
		Int("data_quality", summary.DataQualityCount).
		Bool("submitted", summary.Submitted).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("assessment pipeline complete")

	return summary, nil
}

func rawOrNull(b json.RawMessage) []byte {
	if !json.Valid(b) {
		quoted, _ := json.Marshal(string(b))
		return quoted
	}
	return b
}
