package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/vitalrisk/internal/aggregate"
	"github.com/gyeh/vitalrisk/internal/evaluate"
	"github.com/gyeh/vitalrisk/internal/exitcode"
	"github.com/gyeh/vitalrisk/internal/fetch"
	"github.com/gyeh/vitalrisk/internal/logging"
	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/report"
)

var scoreOutput string

var scoreCmd = &cobra.Command{
	Use:   "score <file.json>",
	Short: "Score a local file of patient records (no network)",
	Long:  "Reads a JSON array of patient records, or a saved page response, and prints each patient's risk breakdown and the resulting summary.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "Also write the report to this path (format from extension)")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Error().Err(err).Msg("failed to read records file")
		os.Exit(exitcode.ValidationError)
	}

	records, err := loadRecords(data)
	if err != nil {
		log.Error().Err(err).Str("file", args[0]).Msg("not a record array or page response")
		os.Exit(exitcode.ValidationError)
	}

	agg := aggregate.New()
	var patients []model.EvaluatedPatient
	err = evaluate.Batch(records, func(p model.EvaluatedPatient) {
		patients = append(patients, p)
		agg.Add(p)
	})
	if err != nil {
		var batchErr *evaluate.BatchError
		if errors.As(err, &batchErr) {
			log.Error().Int("index", batchErr.Index).Str("payload", string(batchErr.Payload)).Msg("record could not be decoded")
		}
		log.Error().Err(err).Msg("evaluation failed")
		os.Exit(exitcode.EvaluationError)
	}

	printPatients(os.Stdout, patients)

	summary, _ := json.MarshalIndent(agg.Summary(), "", "  ")
	fmt.Printf("\n%s\n", summary)

	if scoreOutput != "" {
		if err := report.WriteFile(scoreOutput, "", agg.Reports()); err != nil {
			log.Error().Err(err).Msg("failed to write report")
			os.Exit(exitcode.PersistError)
		}
		log.Info().Str("path", scoreOutput).Msg("report written")
	}
	return nil
}

// loadRecords accepts either a bare JSON array of records or a page response
// whose data field holds them.
func loadRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return records, nil
	}
	page, err := fetch.DecodePage(trimmed)
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

func printPatients(w io.Writer, patients []model.EvaluatedPatient) {
	fmt.Fprintf(w, "%-12s %-24s %-18s %-22s %-20s %s\n",
		"ID", "NAME", "AGE", "BLOOD PRESSURE", "TEMPERATURE", "TOTAL")
	for _, p := range patients {
		flags := ""
		if p.Fever {
			flags += " fever"
		}
		if p.DataQualityIssue {
			flags += " data-quality"
		}
		fmt.Fprintf(w, "%-12s %-24s %-18s %-22s %-20s %s%s\n",
			p.ID, p.Name, p.AgeDisplay, p.BloodPressureDisplay, p.TemperatureDisplay,
			p.TotalRiskDisplay, flags)
	}
}
