package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/crime-report-analyzer/internal/config"
	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

const trainingCSV = `Category,Descript
LARCENY/THEFT,GRAND THEFT FROM LOCKED AUTO
LARCENY/THEFT,PETTY THEFT OF PROPERTY
LARCENY/THEFT,GRAND THEFT FROM PERSON
VEHICLE THEFT,STOLEN AUTOMOBILE
VEHICLE THEFT,STOLEN TRUCK
VEHICLE THEFT,RECOVERED STOLEN AUTOMOBILE
ASSAULT,BATTERY WITH SERIOUS INJURIES
ASSAULT,AGGRAVATED ASSAULT WITH A KNIFE
ASSAULT,BATTERY OF A POLICE OFFICER
`

const reportText = `Report Number: 2024-0001
Date & Time: 2024-03-01 14:30
Reporting Officer: Jane Doe
Incident Location: 800 Block of Market St
Coordinates: (37.7749, -122.4194)
Detailed Description: Stolen automobile recovered near the garage.
Police District: SOUTHERN
Resolution: NONE
Suspect Description: Male, 30s
Victim Information: Adult female
`

func pipelineConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	if err := os.WriteFile(path, []byte(trainingCSV), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return config.Config{
		DatasetPath:        path,
		ClassifierTestSize: 0,
		ClassifierSeed:     42,
		StoreBackend:       config.StoreMemory,
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	app := NewPipeline(pipelineConfig(t))
	ctx := context.Background()
	docs := func() []domain.RawDocument {
		return []domain.RawDocument{{Filename: "a.txt", MimeType: "text/plain", Body: []byte(reportText)}}
	}

	result, err := app.IngestUC.Ingest(ctx, docs())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.Added != 1 || result.Total != 1 {
		t.Fatalf("unexpected ingest result %+v", result)
	}
	report := result.Reports[0]
	if report.ReportNumber != "2024-0001" || report.District != "SOUTHERN" {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.PredictedCategory != "VEHICLE THEFT" {
		t.Fatalf("expected VEHICLE THEFT, got %q", report.PredictedCategory)
	}

	again, err := app.IngestUC.Ingest(ctx, docs())
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if again.Added != 0 || again.Total != 1 {
		t.Fatalf("duplicate upload must not grow the store, got %+v", again)
	}

	var buf strings.Builder
	if err := app.ExportUC.Export(ctx, "csv", &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("expected header and one row, got %d lines", lines)
	}
	if app.Health()["events"] != "disabled" {
		t.Fatalf("expected events disabled")
	}
}

func TestPipelineWithMissingDatasetPredictsUnknown(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.DatasetPath = filepath.Join(t.TempDir(), "missing.csv")
	app := NewPipeline(cfg)

	report := app.ProcessUC.ProcessText(context.Background(), reportText)
	if report.PredictedCategory != domain.UnknownCategory {
		t.Fatalf("expected Unknown, got %q", report.PredictedCategory)
	}
	if report.ReportNumber != "2024-0001" {
		t.Fatalf("extraction must still work, got %+v", report)
	}
	if app.Classifier.Status().State != domain.ClassifierFailed {
		t.Fatalf("expected failed classifier state")
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.StoreBackend = "redis"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestCancelledIngestLeavesStoreUntouched(t *testing.T) {
	app := NewPipeline(pipelineConfig(t))
	doc := func() []domain.RawDocument {
		return []domain.RawDocument{{Filename: "a.txt", MimeType: "text/plain", Body: []byte(reportText)}}
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := app.IngestUC.Ingest(cancelled, doc()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	result, err := app.IngestUC.Ingest(context.Background(), doc())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.Total != 1 || result.Reports[0].PredictedCategory != "VEHICLE THEFT" {
		t.Fatalf("expected one classified report, got total=%d %+v", result.Total, result.Reports)
	}
}
