package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// CSVLoader reads a comma separated dataset with a header row.
type CSVLoader struct {
	path string
	cols Columns
}

func NewCSVLoader(path string, cols Columns) *CSVLoader {
	return &CSVLoader{path: path, cols: cols.withDefaults()}
}

func (l *CSVLoader) Load(ctx context.Context) ([]domain.TrainingExample, error) {
	if err := checkPath(l.path); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTrainingData, "open dataset", err)
	}
	defer f.Close()

	return readCSV(ctx, f, l.cols)
}

func readCSV(ctx context.Context, r io.Reader, cols Columns) ([]domain.TrainingExample, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("dataset is empty")
		}
		return nil, domain.WrapError(domain.ErrTrainingData, "read dataset header", err)
	}
	mapper, err := newRowMapper(header, cols)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrainingExample, 0, 1024)
	for n := 1; ; n++ {
		if err := ctxErr(ctx, n); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.ErrTrainingData, "read dataset row", err)
		}
		if ex, ok := mapper.example(row); ok {
			out = append(out, ex)
		}
	}
	return out, nil
}
