package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// Report file names, without extension
const (
	YieldSchedulesFile = "vdot-yield-schedules"
	HoldersSuffix      = "-holders"
	PositionsSuffix    = "-positions"
)

// Record is a report row that can also be written as CSV
type Record interface {
	CSVHeaders() []string
	ToCSV() []string
}

// Exporter writes report rows into the output directory
type Exporter struct {
	dir     string
	formats []ExportFormat
	logger  *zap.Logger
}

// NewExporter creates an exporter writing every report in each of formats
func NewExporter(dir string, formats []string, logger *zap.Logger) *Exporter {
	e := &Exporter{
		dir:    dir,
		logger: logger.Named("export"),
	}
	for _, f := range formats {
		e.formats = append(e.formats, ExportFormat(strings.ToLower(f)))
	}
	if len(e.formats) == 0 {
		e.formats = []ExportFormat{FormatJSON}
	}
	return e
}

// Dir returns the output directory
func (e *Exporter) Dir() string {
	return e.dir
}

// Write writes rows to <name>.<format> for each configured format and returns the written paths.
// Empty rows produce an empty array, never a missing file.
func Write[T Record](e *Exporter, name string, rows []T) ([]string, error) {
	// Ensure output directory exists
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if rows == nil {
		rows = []T{}
	}

	paths := make([]string, 0, len(e.formats))
	for _, format := range e.formats {
		outputPath := filepath.Join(e.dir, fmt.Sprintf("%s.%s", name, format))

		var err error
		switch format {
		case FormatJSON:
			err = exportToJSON(rows, outputPath)
		case FormatCSV:
			err = exportToCSV(rows, outputPath)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return paths, err
		}

		e.logger.Info("Report written",
			zap.String("file", outputPath),
			zap.Int("count", len(rows)),
			zap.String("format", string(format)))
		paths = append(paths, outputPath)
	}
	return paths, nil
}

// exportToJSON writes rows as an indented JSON array
func exportToJSON[T Record](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return file.Close()
}

// exportToCSV writes rows with a header line
func exportToCSV[T Record](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	var zero T
	if err := writer.Write(zero.CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.ToCSV()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Close()
}

// HoldersFile is the holder report name of an asset slug
func HoldersFile(slug string) string {
	return slug + HoldersSuffix
}

// PositionsFile is the position report name of an asset slug
func PositionsFile(slug string) string {
	return slug + PositionsSuffix
}
