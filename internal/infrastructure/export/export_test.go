package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

func coord(v float64) *float64 { return &v }

func fixtures() []domain.Report {
	return []domain.Report{
		{
			ReportNumber: "2024-1", DateTime: "2024-03-01 14:30", Officer: "Jane Doe", Location: "Market St, SF",
			Latitude: coord(37.7749), Longitude: coord(-122.4194), Description: "stolen \"bike\"",
			PredictedCategory: "LARCENY/THEFT", District: "SOUTHERN", Resolution: "NONE",
			Suspect: domain.NotSpecified, Victim: domain.NotSpecified,
		},
		{
			ReportNumber: "2024-2", DateTime: domain.NotSpecified, Officer: domain.NotSpecified, Location: domain.NotSpecified,
			Description: domain.NotSpecified, PredictedCategory: domain.UnknownCategory, District: domain.NotSpecified,
			Resolution: domain.NotSpecified, Suspect: domain.NotSpecified, Victim: domain.NotSpecified,
		},
	}
}

func TestCSVExportHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter().Export(&buf, fixtures()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	for i, name := range domain.ReportFields {
		if records[0][i] != name {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], name)
		}
	}
	if records[1][4] != "37.7749" || records[1][5] != "-122.4194" {
		t.Fatalf("unexpected coordinates %q %q", records[1][4], records[1][5])
	}
	if records[1][6] != "stolen \"bike\"" {
		t.Fatalf("quoted description not preserved: %q", records[1][6])
	}
	if records[2][4] != "" || records[2][5] != "" {
		t.Fatalf("absent coordinates must be empty cells, got %q %q", records[2][4], records[2][5])
	}
}

func TestCSVExportEmptyCollectionWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter().Export(&buf, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Fatalf("expected single header line, got %d", lines)
	}
}

func TestXLSXExportLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := NewXLSXExporter().Export(&buf, fixtures()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Reports")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Report Number" || rows[1][0] != "2024-1" {
		t.Fatalf("unexpected layout %v", rows[:2])
	}
}
