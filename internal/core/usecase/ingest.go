package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

// IngestReportsUseCase runs uploads through the pipeline and merges the
// results into the report store. Ingest, Clear and Reports are serialized so
// a batch merge is never interleaved with a clear.
type IngestReportsUseCase struct {
	processor ports.ReportProcessor
	store     ports.ReportStore
	publisher ports.ReportEventPublisher
	recorder  ports.PipelineRecorder

	mu sync.Mutex
}

func NewIngestReportsUseCase(
	processor ports.ReportProcessor,
	store ports.ReportStore,
	publisher ports.ReportEventPublisher,
	recorder ports.PipelineRecorder,
) *IngestReportsUseCase {
	return &IngestReportsUseCase{
		processor: processor,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
	}
}

func (uc *IngestReportsUseCase) Ingest(ctx context.Context, docs []domain.RawDocument) (*domain.IngestResult, error) {
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest reports", fmt.Errorf("no documents"))
	}
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
		docs[i].Filename = sanitizeFilename(docs[i].Filename)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	batch := uc.processor.Process(ctx, docs)
	// A cancelled batch may carry categories forced to Unknown; none of it is stored.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ingest reports: %w", err)
	}

	added, err := uc.store.Merge(ctx, batch.Reports)
	if err != nil {
		return nil, fmt.Errorf("merge reports: %w", err)
	}
	total, err := uc.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	if uc.recorder != nil {
		uc.recorder.SetStoreSize(total)
	}

	uc.publish(ctx, added)

	return &domain.IngestResult{
		BatchResult: *batch,
		Added:       len(added),
		Total:       total,
	}, nil
}

func (uc *IngestReportsUseCase) Reports(ctx context.Context) ([]domain.Report, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	reports, err := uc.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (uc *IngestReportsUseCase) Clear(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}
	if uc.recorder != nil {
		uc.recorder.SetStoreSize(0)
	}
	slog.Info("report_store_cleared")
	return nil
}

// publish announces newly merged reports. Publishing is best effort: the
// reports are already stored.
func (uc *IngestReportsUseCase) publish(ctx context.Context, reports []domain.Report) {
	if uc.publisher == nil {
		return
	}
	for _, report := range reports {
		if err := uc.publisher.PublishReportExtracted(ctx, report); err != nil {
			slog.Warn("report_event_publish_failed", "report_number", report.ReportNumber, "error", err)
			return
		}
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "document.bin"
	}
	return base
}
