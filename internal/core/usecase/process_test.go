package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/extraction"
)

type sourceResult struct {
	pages []string
	err   error
}

type sourceFake struct {
	byFilename map[string]sourceResult
}

func (f *sourceFake) Pages(_ context.Context, doc domain.RawDocument) ([]string, error) {
	res := f.byFilename[doc.Filename]
	return res.pages, res.err
}

type predictorFake struct {
	label string
	seen  []string
}

func (f *predictorFake) Predict(_ context.Context, text string) string {
	f.seen = append(f.seen, text)
	if text == domain.NotSpecified {
		return domain.UnknownCategory
	}
	return f.label
}

func (f *predictorFake) Warmup(context.Context) error { return nil }

func (f *predictorFake) Status() domain.ClassifierStatus {
	return domain.ClassifierStatus{State: domain.ClassifierReady}
}

func TestProcessPreservesOrderAndSkipsUnreadableDocuments(t *testing.T) {
	source := &sourceFake{byFilename: map[string]sourceResult{
		"a.pdf": {pages: []string{"Report Number: 2024-1\nDetailed Description: car broken into"}},
		"b.pdf": {err: domain.WrapError(domain.ErrDocumentRead, "read pdf", errors.New("corrupt xref table"))},
		"c.pdf": {pages: []string{"Report Number: 2024-3"}, err: errors.New("page 2: bad font")},
		"d.pdf": {pages: []string{"Report Number: 2024-4"}},
	}}
	predictor := &predictorFake{label: "LARCENY/THEFT"}
	recorder := newRecorderFake()
	uc := NewProcessReportsUseCase(source, extraction.NewExtractor(), predictor, recorder)

	result := uc.Process(context.Background(), []domain.RawDocument{
		{ID: "1", Filename: "a.pdf"},
		{ID: "2", Filename: "b.pdf"},
		{ID: "3", Filename: "c.pdf"},
		{ID: "4", Filename: "d.pdf"},
	})

	if len(result.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(result.Reports))
	}
	for i, want := range []string{"2024-1", "2024-3", "2024-4"} {
		if result.Reports[i].ReportNumber != want {
			t.Fatalf("report %d: expected %s, got %s", i, want, result.Reports[i].ReportNumber)
		}
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped document, got %d", result.Skipped)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected warnings for skipped and partial documents, got %+v", result.Warnings)
	}
	if !result.Warnings[0].Skipped || result.Warnings[0].Filename != "b.pdf" {
		t.Fatalf("unexpected first warning %+v", result.Warnings[0])
	}
	if result.Warnings[1].Skipped || result.Warnings[1].Filename != "c.pdf" {
		t.Fatalf("unexpected second warning %+v", result.Warnings[1])
	}
	if result.Reports[0].PredictedCategory != "LARCENY/THEFT" {
		t.Fatalf("expected predicted category, got %q", result.Reports[0].PredictedCategory)
	}
	if result.Reports[1].PredictedCategory != domain.UnknownCategory {
		t.Fatalf("report without description must be unknown, got %q", result.Reports[1].PredictedCategory)
	}
	if recorder.documents[documentStatusSkipped] != 1 || recorder.documents[documentStatusPartial] != 1 || recorder.documents[documentStatusProcessed] != 2 {
		t.Fatalf("unexpected document observations %+v", recorder.documents)
	}
}

func TestProcessJoinsNonEmptyPages(t *testing.T) {
	source := &sourceFake{byFilename: map[string]sourceResult{
		"a.pdf": {pages: []string{"Report Number: 2024-551", "   ", "Detailed Description: stolen bicycle from porch"}},
	}}
	predictor := &predictorFake{label: "LARCENY/THEFT"}
	uc := NewProcessReportsUseCase(source, extraction.NewExtractor(), predictor, nil)

	result := uc.Process(context.Background(), []domain.RawDocument{{Filename: "a.pdf"}})
	if len(result.Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(result.Reports))
	}
	report := result.Reports[0]
	if report.ReportNumber != "2024-551" || report.Description != "stolen bicycle from porch" {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(predictor.seen) != 1 || predictor.seen[0] != "stolen bicycle from porch" {
		t.Fatalf("predictor must receive the narrative, got %v", predictor.seen)
	}
}

func TestProcessTextRecordsExtractionMisses(t *testing.T) {
	recorder := newRecorderFake()
	uc := NewProcessReportsUseCase(&sourceFake{}, extraction.NewExtractor(), &predictorFake{label: "ASSAULT"}, recorder)

	report := uc.ProcessText(context.Background(), "Report Number: 2024-9")
	if report.PredictedCategory != domain.UnknownCategory {
		t.Fatalf("expected unknown for missing narrative, got %q", report.PredictedCategory)
	}
	if recorder.misses["Detailed Description"] != 1 || recorder.misses["Report Number"] != 0 {
		t.Fatalf("unexpected miss observations %+v", recorder.misses)
	}
	if recorder.predictions[domain.UnknownCategory] != 1 {
		t.Fatalf("expected one unknown prediction, got %+v", recorder.predictions)
	}
}

func TestProcessStopsWhenContextCancelled(t *testing.T) {
	source := &sourceFake{byFilename: map[string]sourceResult{
		"a.txt": {pages: []string{"Report Number: 2024-1"}},
	}}
	predictor := &predictorFake{label: "ASSAULT"}
	uc := NewProcessReportsUseCase(source, extraction.NewExtractor(), predictor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := uc.Process(ctx, []domain.RawDocument{{Filename: "a.txt"}})
	if len(result.Reports) != 0 || len(predictor.seen) != 0 {
		t.Fatalf("expected no reports after cancel, got %d", len(result.Reports))
	}
}
