package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

type ExportReportsUseCase struct {
	reports   ports.ReportIngestor
	exporters map[string]ports.ReportExporter
}

func NewExportReportsUseCase(reports ports.ReportIngestor, exporters map[string]ports.ReportExporter) *ExportReportsUseCase {
	normalized := make(map[string]ports.ReportExporter, len(exporters))
	for format, exporter := range exporters {
		normalized[strings.ToLower(format)] = exporter
	}
	return &ExportReportsUseCase{
		reports:   reports,
		exporters: normalized,
	}
}

func (uc *ExportReportsUseCase) Export(ctx context.Context, format string, w io.Writer) error {
	exporter, err := uc.exporter(format)
	if err != nil {
		return err
	}
	reports, err := uc.reports.Reports(ctx)
	if err != nil {
		return err
	}
	if err := exporter.Export(w, reports); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

func (uc *ExportReportsUseCase) ContentType(format string) (string, error) {
	exporter, err := uc.exporter(format)
	if err != nil {
		return "", err
	}
	return exporter.ContentType(), nil
}

func (uc *ExportReportsUseCase) exporter(format string) (ports.ReportExporter, error) {
	exporter, ok := uc.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export reports", fmt.Errorf("unsupported format %q", format))
	}
	return exporter, nil
}
