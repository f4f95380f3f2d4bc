// Package export serializes the aggregated report collection.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// CSVExporter writes a header row followed by one row per report.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (CSVExporter) Export(w io.Writer, reports []domain.Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(domain.ReportFields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, report := range reports {
		if err := writer.Write(report.Values()); err != nil {
			return fmt.Errorf("write csv row %s: %w", report.ReportNumber, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
