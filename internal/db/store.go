package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/vitalrisk/internal/model"
	embedsql "github.com/gyeh/vitalrisk/internal/sql"
)

const copyBufferSize = 256

// Run statuses recorded in assessment.runs.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store persists assessment runs and their patient reports.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// StartRun registers a run in the running state.
func (s *Store) StartRun(ctx context.Context, runID uuid.UUID, baseURL string) error {
	if _, err := s.pool.Exec(ctx, embedsql.StartRun, runID, baseURL); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// SaveReports COPY-loads reports for runID, numbering them from 1 in order.
func (s *Store) SaveReports(ctx context.Context, runID uuid.UUID, reports []model.PatientReport) (int64, error) {
	start := time.Now()
	ch := make(chan *model.ReportRow, copyBufferSize)
	errCh := make(chan error, 1)

	// Producer goroutine: reports -> keyed rows
	go func() {
		defer close(ch)
		for i := range reports {
			row := &model.ReportRow{RunID: runID, Seq: int32(i + 1), Report: reports[i]}
			select {
			case ch <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"assessment", "patient_reports"},
		model.CopyColumns(),
		NewChannelSource(ch),
	)

	if err != nil {
		// Unblock the producer if COPY stopped reading early.
		for range ch {
		}
	}
	if prodErr := <-errCh; prodErr != nil {
		return 0, fmt.Errorf("report producer: %w", prodErr)
	}
	if err != nil {
		return 0, fmt.Errorf("copy reports: %w", err)
	}

	s.log.Info().
		Str("run_id", runID.String()).
		Int64("rows", copied).
		Str("duration", time.Since(start).String()).
		Msg("reports persisted")
	return copied, nil
}

// FinishRun records the outcome of a run. runErr marks the run failed.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, summary *model.AssessmentSummary, runErr error) error {
	status := StatusSucceeded
	var errMsg *string
	if runErr != nil {
		status = StatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}
	if summary == nil {
		summary = &model.AssessmentSummary{RunID: runID.String()}
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	var ackJSON []byte
	if summary.Acknowledgment != nil {
		if ackJSON, err = json.Marshal(summary.Acknowledgment); err != nil {
			return fmt.Errorf("encode acknowledgment: %w", err)
		}
	}

	_, err = s.pool.Exec(ctx, embedsql.FinishRun,
		runID, status,
		summary.PagesFetched, summary.FetchAttempts, summary.RecordsEvaluated,
		summary.HighRiskCount, summary.FeverCount, summary.DataQualityCount,
		summaryJSON, ackJSON, errMsg,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// CountReports returns the number of persisted reports for runID.
func (s *Store) CountReports(ctx context.Context, runID uuid.UUID) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, embedsql.CountReports, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
