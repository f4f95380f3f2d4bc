package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// Source treats the whole body as a single UTF-8 text segment.
type Source struct{}

func NewSource() *Source {
	return &Source{}
}

func (s *Source) Pages(_ context.Context, doc domain.RawDocument) ([]string, error) {
	if !utf8.Valid(doc.Body) {
		return nil, domain.WrapError(domain.ErrDocumentRead, "read text document",
			fmt.Errorf("unsupported binary format: %s", doc.Filename))
	}

	text := strings.TrimPrefix(string(doc.Body), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []string{text}, nil
}
