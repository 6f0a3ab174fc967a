// Package parquetio reads and writes patient reports as Parquet files.
package parquetio

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/vitalrisk/internal/model"
)

// Write writes reports to path in order, replacing any existing file.
func Write(path string, reports []model.PatientReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[model.PatientReport](f)
	if _, err := w.Write(reports); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

func reportColumns() []string {
	return model.ReportColumns()
}
