// Package dataset loads the historical labeled incident dataset used to train
// the category classifier.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

const (
	DefaultDescriptionColumn = "Descript"
	DefaultCategoryColumn    = "Category"
)

// Columns names the header cells holding the narrative and its label.
type Columns struct {
	Description string
	Category    string
}

func (c Columns) withDefaults() Columns {
	if strings.TrimSpace(c.Description) == "" {
		c.Description = DefaultDescriptionColumn
	}
	if strings.TrimSpace(c.Category) == "" {
		c.Category = DefaultCategoryColumn
	}
	return c
}

// New picks a loader from the file extension. Anything that is not .xlsx is
// read as CSV.
func New(path string, cols Columns) ports.DatasetLoader {
	cols = cols.withDefaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return &XLSXLoader{path: path, cols: cols}
	default:
		return &CSVLoader{path: path, cols: cols}
	}
}

// rowMapper resolves column positions once from the header row.
type rowMapper struct {
	descIdx int
	catIdx  int
}

func newRowMapper(header []string, cols Columns) (*rowMapper, error) {
	m := &rowMapper{descIdx: -1, catIdx: -1}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case m.descIdx < 0 && name == cols.Description:
			m.descIdx = i
		case m.catIdx < 0 && name == cols.Category:
			m.catIdx = i
		}
	}

	var missing []string
	if m.descIdx < 0 {
		missing = append(missing, cols.Description)
	}
	if m.catIdx < 0 {
		missing = append(missing, cols.Category)
	}
	if len(missing) > 0 {
		return nil, domain.WrapError(domain.ErrTrainingData, "read dataset header",
			fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")))
	}
	return m, nil
}

// example maps one row. Rows missing either value are not usable.
func (m *rowMapper) example(row []string) (domain.TrainingExample, bool) {
	if m.descIdx >= len(row) || m.catIdx >= len(row) {
		return domain.TrainingExample{}, false
	}
	ex := domain.TrainingExample{
		Description: strings.TrimSpace(row[m.descIdx]),
		Category:    strings.TrimSpace(row[m.catIdx]),
	}
	if ex.Description == "" || ex.Category == "" {
		return domain.TrainingExample{}, false
	}
	return ex, true
}

func checkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.WrapError(domain.ErrTrainingData, "open dataset", fmt.Errorf("dataset path is not configured"))
	}
	return nil
}

func ctxErr(ctx context.Context, n int) error {
	if n%1024 != 0 {
		return nil
	}
	return ctx.Err()
}
