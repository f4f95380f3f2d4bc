package extractor

import (
	"context"
	"testing"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

type sourceFake struct {
	name  string
	calls int
}

func (f *sourceFake) Pages(context.Context, domain.RawDocument) ([]string, error) {
	f.calls++
	return []string{f.name}, nil
}

func TestRouterPicksSource(t *testing.T) {
	tests := []struct {
		name string
		doc  domain.RawDocument
		want string
	}{
		{name: "magic bytes", doc: domain.RawDocument{Filename: "upload", Body: []byte("%PDF-1.7\n")}, want: "pdf"},
		{name: "mime type", doc: domain.RawDocument{MimeType: "application/pdf; charset=binary"}, want: "pdf"},
		{name: "extension", doc: domain.RawDocument{Filename: "REPORT.PDF"}, want: "pdf"},
		{name: "text", doc: domain.RawDocument{Filename: "report.txt", MimeType: "text/plain", Body: []byte("Report Number: 2024-1")}, want: "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&sourceFake{name: "pdf"}, &sourceFake{name: "text"})
			pages, err := router.Pages(context.Background(), tt.doc)
			if err != nil {
				t.Fatalf("Pages() error = %v", err)
			}
			if pages[0] != tt.want {
				t.Fatalf("expected %s source, got %s", tt.want, pages[0])
			}
		})
	}
}
