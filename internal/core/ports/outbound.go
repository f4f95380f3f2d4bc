package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// TextSource pulls text segments (pages) out of a raw document. It may return
// the segments read so far together with a non-nil error.
type TextSource interface {
	Pages(ctx context.Context, doc domain.RawDocument) ([]string, error)
}

// FieldExtractor builds a report from plain document text.
type FieldExtractor interface {
	Extract(text string) domain.Report
}

// DatasetLoader reads the historical labeled dataset.
type DatasetLoader interface {
	Load(ctx context.Context) ([]domain.TrainingExample, error)
}

// TrainedModel is a fitted category model.
type TrainedModel interface {
	Predict(text string) (string, error)
	Summary() domain.ModelSummary
}

// ModelTrainer fits a model from labeled examples.
type ModelTrainer interface {
	Train(examples []domain.TrainingExample) (TrainedModel, error)
}

// ReportStore is the ordered, deduplicated report collection.
type ReportStore interface {
	// Merge appends reports, dropping exact duplicates, and returns the
	// reports that were actually added in insertion order.
	Merge(ctx context.Context, reports []domain.Report) ([]domain.Report, error)
	Clear(ctx context.Context) error
	All(ctx context.Context) ([]domain.Report, error)
	Count(ctx context.Context) (int, error)
}

// ReportExporter serializes reports into one output format.
type ReportExporter interface {
	ContentType() string
	Export(w io.Writer, reports []domain.Report) error
}

// ReportEventPublisher announces newly aggregated reports.
type ReportEventPublisher interface {
	PublishReportExtracted(ctx context.Context, report domain.Report) error
}

// PipelineRecorder receives pipeline observations for metrics.
type PipelineRecorder interface {
	RecordDocument(status string)
	RecordExtractionMiss(field string)
	RecordPrediction(category string)
	RecordTraining(duration time.Duration, err error)
	SetStoreSize(n int)
}
