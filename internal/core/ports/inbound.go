package ports

import (
	"context"
	"io"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// ReportIngestor is the inbound contract for processing uploads into the
// aggregated report collection.
type ReportIngestor interface {
	Ingest(ctx context.Context, docs []domain.RawDocument) (*domain.IngestResult, error)
	Reports(ctx context.Context) ([]domain.Report, error)
	Clear(ctx context.Context) error
}

// ReportProcessor turns raw documents into classified reports without storing them.
type ReportProcessor interface {
	Process(ctx context.Context, docs []domain.RawDocument) *domain.BatchResult
	ProcessText(ctx context.Context, text string) domain.Report
}

// CategoryPredictor maps a narrative to a crime category. It never fails:
// degraded states resolve to domain.UnknownCategory.
type CategoryPredictor interface {
	Predict(ctx context.Context, text string) string
	Warmup(ctx context.Context) error
	Status() domain.ClassifierStatus
}

// ReportExportService renders the aggregated collection in a named format.
type ReportExportService interface {
	Export(ctx context.Context, format string, w io.Writer) error
	ContentType(format string) (string, error)
}
