package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/vitalrisk/internal/assess"
	"github.com/gyeh/vitalrisk/internal/db"
	"github.com/gyeh/vitalrisk/internal/exitcode"
	"github.com/gyeh/vitalrisk/internal/fetch"
	"github.com/gyeh/vitalrisk/internal/logging"
	"github.com/gyeh/vitalrisk/internal/submit"
	"github.com/gyeh/vitalrisk/internal/transport"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Fetch, score and submit the full patient collection",
	RunE:  runAssess,
}

func init() {
	f := assessCmd.Flags()
	f.StringVar(&cfg.BaseURL, "base-url", os.Getenv("VITALRISK_BASE_URL"), "Assessment API base URL (or set VITALRISK_BASE_URL)")
	f.StringVar(&cfg.APIKey, "api-key", os.Getenv("VITALRISK_API_KEY"), "API key sent as x-api-key (or set VITALRISK_API_KEY)")
	f.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Records requested per page")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	f.IntVar(&cfg.Retry.MaxAttempts, "max-attempts", cfg.Retry.MaxAttempts, "Attempts per page before giving up")
	f.DurationVar(&cfg.Retry.BaseDelay, "base-delay", cfg.Retry.BaseDelay, "Base retry delay for the first retries")
	f.DurationVar(&cfg.Retry.RateLimitDelay, "rate-limit-delay", cfg.Retry.RateLimitDelay, "Retry delay once the linear schedule is exhausted")
	f.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Report output path")
	f.StringVar(&cfg.OutputFormat, "format", "", "Report format: json, parquet or xlsx (default: from --output extension)")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this path")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Evaluate and persist, but do not submit")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	client := transport.New(cfg.BaseURL, cfg.Timeout, log)
	fetcher := fetch.NewFetcher(client, fetch.Config{
		Key:            cfg.APIKey,
		MaxAttempts:    cfg.Retry.MaxAttempts,
		BaseDelay:      cfg.Retry.BaseDelay,
		RateLimitDelay: cfg.Retry.RateLimitDelay,
	}, log)

	deps := assess.Deps{
		Walker:    fetch.NewPaginator(fetcher, log),
		Submitter: submit.New(client, cfg.APIKey, log),
	}

	if cfg.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		deps.Store = db.NewStore(pool, log)
	}

	summary, err := assess.Run(ctx, deps, log, &cfg)
	if err != nil {
		var pe *assess.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("assessment failed")
		} else {
			log.Error().Err(err).Msg("assessment failed")
		}
		os.Exit(exitCodeFor(err))
	}

	status := "submitted"
	if !summary.Submitted {
		status = "not submitted (dry run)"
	}
	fmt.Printf("Assessment complete: %d patients, %d high risk, %d fever, %d data quality issues, %s (%.1fs)\n",
		summary.RecordsEvaluated, summary.HighRiskCount, summary.FeverCount, summary.DataQualityCount,
		status, summary.DurationTotal.Seconds())
	return nil
}

// exitCodeFor maps a pipeline failure to the process exit code.
func exitCodeFor(err error) int {
	var pe *assess.PipelineError
	if !errors.As(err, &pe) {
		return exitcode.FetchError
	}
	switch pe.Phase {
	case assess.PhaseFetch:
		return exitcode.FetchError
	case assess.PhaseEvaluate:
		return exitcode.EvaluationError
	case assess.PhasePersist:
		return exitcode.PersistError
	case assess.PhaseSubmit:
		return exitcode.SubmitError
	default:
		return exitcode.FetchError
	}
}
