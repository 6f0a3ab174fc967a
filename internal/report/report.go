// Package report persists patient reports to disk as JSON, Parquet or XLSX.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/parquetio"
)

// Supported output formats.
const (
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatXLSX    = "xlsx"
)

// Formats lists every accepted format name.
var Formats = []string{FormatJSON, FormatParquet, FormatXLSX}

// ValidFormat reports whether name is a supported format.
func ValidFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}

// FormatFromPath infers the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// WriteFile writes reports to path in the given format. An empty format is
// inferred from the path.
func WriteFile(path, format string, reports []model.PatientReport) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if reports == nil {
		reports = []model.PatientReport{}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	switch format {
	case FormatJSON:
		return writeJSON(path, reports)
	case FormatParquet:
		return parquetio.Write(path, reports)
	case FormatXLSX:
		return writeXLSX(path, reports)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeJSON(path string, reports []model.PatientReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
