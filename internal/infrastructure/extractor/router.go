// Package extractor selects a text source for a raw document.
package extractor

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

var pdfMagic = []byte("%PDF-")

// Router sends PDF documents to the PDF source and everything else to the
// plain text source.
type Router struct {
	pdf  ports.TextSource
	text ports.TextSource
}

func NewRouter(pdf, text ports.TextSource) *Router {
	return &Router{pdf: pdf, text: text}
}

func (r *Router) Pages(ctx context.Context, doc domain.RawDocument) ([]string, error) {
	if isPDF(doc) {
		return r.pdf.Pages(ctx, doc)
	}
	return r.text.Pages(ctx, doc)
}

func isPDF(doc domain.RawDocument) bool {
	if bytes.HasPrefix(doc.Body, pdfMagic) {
		return true
	}
	mime := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.Filename), ".pdf")
}
