// Package pdf reads per-page plain text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

type Source struct{}

func NewSource() *Source {
	return &Source{}
}

// Pages returns one text segment per readable page. Pages that fail to
// decode are reported in the error while the remaining pages are kept.
func (s *Source) Pages(ctx context.Context, doc domain.RawDocument) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrDocumentRead, "read pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	if len(doc.Body) == 0 {
		return nil, domain.WrapError(domain.ErrDocumentRead, "open pdf", fmt.Errorf("empty document"))
	}
	reader, err := lpdf.NewReader(bytes.NewReader(doc.Body), int64(len(doc.Body)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrDocumentRead, "open pdf", err)
	}

	total := reader.NumPage()
	var pageErrs []error
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			pageErrs = append(pageErrs, fmt.Errorf("page %d: %w", i, err))
			continue
		}
		pages = append(pages, text)
	}

	if len(pageErrs) > 0 {
		return pages, domain.WrapError(domain.ErrDocumentRead, "read pdf pages", errors.Join(pageErrs...))
	}
	return pages, nil
}

func pageText(page lpdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page content: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}
