package dataset

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// XLSXLoader reads the first sheet of a workbook; row one is the header.
type XLSXLoader struct {
	path string
	cols Columns
}

func NewXLSXLoader(path string, cols Columns) *XLSXLoader {
	return &XLSXLoader{path: path, cols: cols.withDefaults()}
}

func (l *XLSXLoader) Load(ctx context.Context) ([]domain.TrainingExample, error) {
	if err := checkPath(l.path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTrainingData, "open dataset", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return readWorkbook(ctx, f, l.cols)
}

func readWorkbook(ctx context.Context, f *excelize.File, cols Columns) ([]domain.TrainingExample, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.WrapError(domain.ErrTrainingData, "read dataset", fmt.Errorf("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.WrapError(domain.ErrTrainingData, "read dataset rows", err)
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrTrainingData, "read dataset header", fmt.Errorf("dataset is empty"))
	}

	mapper, err := newRowMapper(rows[0], cols)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TrainingExample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctxErr(ctx, i+1); err != nil {
			return nil, err
		}
		if ex, ok := mapper.example(row); ok {
			out = append(out, ex)
		}
	}
	return out, nil
}
