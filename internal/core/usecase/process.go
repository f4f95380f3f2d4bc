package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

const (
	documentStatusProcessed = "processed"
	documentStatusPartial   = "partial"
	documentStatusSkipped   = "skipped"
)

type ProcessReportsUseCase struct {
	source    ports.TextSource
	extractor ports.FieldExtractor
	predictor ports.CategoryPredictor
	recorder  ports.PipelineRecorder
}

func NewProcessReportsUseCase(
	source ports.TextSource,
	extractor ports.FieldExtractor,
	predictor ports.CategoryPredictor,
	recorder ports.PipelineRecorder,
) *ProcessReportsUseCase {
	return &ProcessReportsUseCase{
		source:    source,
		extractor: extractor,
		predictor: predictor,
		recorder:  recorder,
	}
}

// Process handles documents independently and in input order. A document
// whose text cannot be read at all is skipped with a warning; one that was
// read partially is processed with the text obtained. Processing stops at
// the first document seen after ctx is cancelled.
func (uc *ProcessReportsUseCase) Process(ctx context.Context, docs []domain.RawDocument) *domain.BatchResult {
	result := &domain.BatchResult{Reports: make([]domain.Report, 0, len(docs))}

	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		text, err := uc.documentText(ctx, doc)
		if err != nil {
			skipped := text == ""
			result.Warnings = append(result.Warnings, domain.DocumentWarning{
				DocumentID: doc.ID,
				Filename:   doc.Filename,
				Skipped:    skipped,
				Message:    err.Error(),
			})
			if skipped {
				result.Skipped++
				uc.recordDocument(documentStatusSkipped)
				slog.Warn("document_skipped", "document_id", doc.ID, "filename", doc.Filename, "error", err)
				continue
			}
			uc.recordDocument(documentStatusPartial)
			slog.Warn("document_partially_read", "document_id", doc.ID, "filename", doc.Filename, "error", err)
		} else {
			uc.recordDocument(documentStatusProcessed)
		}

		result.Reports = append(result.Reports, uc.ProcessText(ctx, text))
	}

	slog.Info("report_batch_processed",
		"documents", len(docs),
		"reports", len(result.Reports),
		"skipped", result.Skipped,
		"warnings", len(result.Warnings),
	)
	return result
}

// ProcessText extracts and classifies a single document's text.
func (uc *ProcessReportsUseCase) ProcessText(ctx context.Context, text string) domain.Report {
	report := uc.extract(text)
	report.PredictedCategory = uc.predictor.Predict(ctx, report.Description)
	if uc.recorder != nil {
		uc.recorder.RecordPrediction(report.PredictedCategory)
	}
	return report
}

// missReporter is implemented by extractors that can name the fields which
// fell back to defaults.
type missReporter interface {
	ExtractWithMisses(text string) (domain.Report, []string)
}

func (uc *ProcessReportsUseCase) extract(text string) domain.Report {
	if ex, ok := uc.extractor.(missReporter); ok && uc.recorder != nil {
		report, misses := ex.ExtractWithMisses(text)
		for _, field := range misses {
			uc.recorder.RecordExtractionMiss(field)
		}
		return report
	}
	return uc.extractor.Extract(text)
}

func (uc *ProcessReportsUseCase) documentText(ctx context.Context, doc domain.RawDocument) (string, error) {
	pages, err := uc.source.Pages(ctx, doc)
	text := joinPages(pages)
	if err != nil && !domain.IsKind(err, domain.ErrDocumentRead) {
		err = domain.WrapError(domain.ErrDocumentRead, "read document "+doc.Filename, err)
	}
	return text, err
}

// joinPages concatenates non-empty segments with a newline.
func joinPages(pages []string) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		parts = append(parts, page)
	}
	return strings.Join(parts, "\n")
}

func (uc *ProcessReportsUseCase) recordDocument(status string) {
	if uc.recorder != nil {
		uc.recorder.RecordDocument(status)
	}
}
