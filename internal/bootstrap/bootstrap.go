package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/crime-report-analyzer/internal/config"
	"github.com/kirillkom/crime-report-analyzer/internal/core/extraction"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
	"github.com/kirillkom/crime-report-analyzer/internal/core/usecase"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/classifier/naivebayes"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/dataset"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/export"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/extractor"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/resilience"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/store/memory"
	"github.com/kirillkom/crime-report-analyzer/internal/observability/metrics"
)

const service = "crime-report-analyzer"

type App struct {
	Config config.Config

	Registry *prometheus.Registry
	Metrics  *metrics.PipelineMetrics

	Store      ports.ReportStore
	Classifier *usecase.CategoryClassifier
	ProcessUC  *usecase.ProcessReportsUseCase
	IngestUC   *usecase.IngestReportsUseCase
	ExportUC   *usecase.ExportReportsUseCase

	publisher *nats.Publisher
	closeFn   func()
}

// New wires the long-running service: the configured store backend and,
// when NATS_URL is set, report event publishing.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	var (
		store ports.ReportStore
		db    *sql.DB
	)
	switch strings.ToLower(cfg.StoreBackend) {
	case "", config.StoreMemory:
		store = memory.New()
	case config.StorePostgres:
		var err error
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewReportRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		store = repo
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	var publisher *nats.Publisher
	if cfg.NATSURL != "" {
		var err error
		publisher, err = nats.Connect(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			Executor: resilience.NewExecutor(resilience.DefaultPolicy()),
		})
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("init report events: %w", err)
		}
	}

	app := build(cfg, store, publisher)
	app.closeFn = func() {
		if publisher != nil {
			publisher.Close()
		}
		if db != nil {
			_ = db.Close()
		}
	}

	if n, err := store.Count(ctx); err == nil {
		app.Metrics.SetStoreSize(n)
	}
	slog.Info("app_bootstrapped", "store_backend", cfg.StoreBackend, "events_enabled", publisher != nil)
	return app, nil
}

// NewPipeline wires an in-memory pipeline without external services, for
// one-shot command line use.
func NewPipeline(cfg config.Config) *App {
	return build(cfg, memory.New(), nil)
}

func build(cfg config.Config, store ports.ReportStore, publisher *nats.Publisher) *App {
	registry := metrics.NewRegistry()
	recorder := metrics.NewPipelineMetrics(service, registry)

	loader := dataset.New(cfg.DatasetPath, dataset.Columns{
		Description: cfg.DatasetDescriptionColumn,
		Category:    cfg.DatasetCategoryColumn,
	})
	opts := naivebayes.DefaultOptions()
	opts.TestSize = cfg.ClassifierTestSize
	if cfg.ClassifierSeed >= 0 {
		opts.Seed = uint64(cfg.ClassifierSeed)
	}
	classifier := usecase.NewCategoryClassifier(loader, naivebayes.NewTrainer(opts), recorder)

	source := extractor.NewRouter(pdf.NewSource(), plaintext.NewSource())
	processUC := usecase.NewProcessReportsUseCase(source, extraction.NewExtractor(), classifier, recorder)

	var events ports.ReportEventPublisher
	if publisher != nil {
		events = publisher
	}
	ingestUC := usecase.NewIngestReportsUseCase(processUC, store, events, recorder)
	exportUC := usecase.NewExportReportsUseCase(ingestUC, map[string]ports.ReportExporter{
		export.FormatCSV:  export.NewCSVExporter(),
		export.FormatXLSX: export.NewXLSXExporter(),
	})

	return &App{
		Config:     cfg,
		Registry:   registry,
		Metrics:    recorder,
		Store:      store,
		Classifier: classifier,
		ProcessUC:  processUC,
		IngestUC:   ingestUC,
		ExportUC:   exportUC,
		publisher:  publisher,
	}
}

// Health reports dependency states for /healthz.
func (a *App) Health() map[string]string {
	out := map[string]string{"store": a.Config.StoreBackend}
	if a.publisher != nil {
		out["events"] = a.publisher.BreakerState()
	} else {
		out["events"] = "disabled"
	}
	return out
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
