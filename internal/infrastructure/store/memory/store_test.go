package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

func coord(v float64) *float64 { return &v }

func report(number string) domain.Report {
	return domain.Report{
		ReportNumber:      number,
		DateTime:          "2024-03-01 14:30",
		Officer:           domain.NotSpecified,
		Location:          "123 Market St",
		Latitude:          coord(37.77),
		Longitude:         coord(-122.41),
		Description:       "stolen bicycle from porch",
		PredictedCategory: "LARCENY/THEFT",
		District:          "SOUTHERN",
		Resolution:        "NONE",
		Suspect:           domain.NotSpecified,
		Victim:            domain.NotSpecified,
	}
}

func numbers(reports []domain.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ReportNumber
	}
	return out
}

func TestMergeDropsDuplicatesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := New()

	added, err := store.Merge(ctx, []domain.Report{report("2024-1"), report("2024-2"), report("2024-1")})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 added, got %d", len(added))
	}

	added, err = store.Merge(ctx, []domain.Report{report("2024-3"), report("2024-2")})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(added) != 1 || added[0].ReportNumber != "2024-3" {
		t.Fatalf("expected only 2024-3 added, got %v", numbers(added))
	}

	all, _ := store.All(ctx)
	got := numbers(all)
	want := []string{"2024-1", "2024-2", "2024-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestMergeIdenticalReportLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, _ = store.Merge(ctx, []domain.Report{report("2024-1"), report("2024-2")})
	before, _ := store.All(ctx)

	added, _ := store.Merge(ctx, []domain.Report{report("2024-2")})
	after, _ := store.All(ctx)

	if len(added) != 0 || len(after) != len(before) {
		t.Fatalf("expected unchanged store, before=%d after=%d added=%d", len(before), len(after), len(added))
	}
	for i := range before {
		if before[i].Key() != after[i].Key() {
			t.Fatalf("order changed at %d", i)
		}
	}
}

func TestMergeKeepsReportsDifferingInOneField(t *testing.T) {
	ctx := context.Background()
	store := New()
	a := report("2024-1")
	b := report("2024-1")
	b.Longitude = nil

	added, _ := store.Merge(ctx, []domain.Report{a, b})
	if len(added) != 2 {
		t.Fatalf("reports differing in one field must both be kept, got %d", len(added))
	}
}

func TestAllReturnsIndependentSnapshot(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, _ = store.Merge(ctx, []domain.Report{report("2024-1")})

	snapshot, _ := store.All(ctx)
	snapshot[0].ReportNumber = "tampered"
	*snapshot[0].Latitude = 0

	again, _ := store.All(ctx)
	if again[0].ReportNumber != "2024-1" || *again[0].Latitude != 37.77 {
		t.Fatalf("snapshot mutation leaked into store: %+v", again[0])
	}
}

func TestClearResetsDedupState(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, _ = store.Merge(ctx, []domain.Report{report("2024-1")})

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
	added, _ := store.Merge(ctx, []domain.Report{report("2024-1")})
	if len(added) != 1 {
		t.Fatalf("report must be accepted again after clear")
	}
}

func TestConcurrentMergeKeepsInvariant(t *testing.T) {
	ctx := context.Background()
	store := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Merge(ctx, []domain.Report{report("2024-1"), report("2024-2")})
		}()
	}
	wg.Wait()

	if n, _ := store.Count(ctx); n != 2 {
		t.Fatalf("expected 2 distinct reports, got %d", n)
	}
}
