// Package naivebayes fits a TF-IDF + multinomial naive Bayes text classifier
// over historical crime descriptions.
package naivebayes

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

type Options struct {
	// TestSize is the held-out fraction in [0, 1).
	TestSize float64
	Seed     uint64
	Alpha    float64
}

func DefaultOptions() Options {
	return Options{
		TestSize: 0.2,
		Seed:     42,
		Alpha:    1.0,
	}
}

func (o Options) normalize() Options {
	out := o
	if out.TestSize < 0 || out.TestSize >= 1 {
		out.TestSize = DefaultOptions().TestSize
	}
	if out.Alpha <= 0 {
		out.Alpha = DefaultOptions().Alpha
	}
	return out
}

type Trainer struct {
	opts Options
}

func NewTrainer(opts Options) *Trainer {
	return &Trainer{opts: opts.normalize()}
}

func (t *Trainer) Train(examples []domain.TrainingExample) (ports.TrainedModel, error) {
	return Train(examples, t.opts)
}

// Train drops rows with a blank description or category, splits the rest into
// training and held-out partitions deterministically, fits on the training
// partition and scores the held-out one.
func Train(examples []domain.TrainingExample, opts Options) (*Model, error) {
	opts = opts.normalize()

	rows := make([]domain.TrainingExample, 0, len(examples))
	for _, ex := range examples {
		desc := strings.TrimSpace(ex.Description)
		cat := strings.TrimSpace(ex.Category)
		if desc == "" || cat == "" {
			continue
		}
		rows = append(rows, domain.TrainingExample{Description: desc, Category: cat})
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrTrainingData, "train classifier", errors.New("no labeled rows after filtering"))
	}

	train, heldOut := split(rows, opts.TestSize, opts.Seed)

	docs := make([]string, len(train))
	labels := make([]string, len(train))
	for i, ex := range train {
		docs[i] = ex.Description
		labels[i] = ex.Category
	}

	vectorizer := FitVectorizer(docs)
	features := make([]sparseVector, len(docs))
	for i, doc := range docs {
		features[i] = vectorizer.Transform(doc)
	}
	classifier := fitMultinomialNB(features, labels, vectorizer.Size(), opts.Alpha)

	model := &Model{
		vectorizer: vectorizer,
		classifier: classifier,
	}
	model.summary = domain.ModelSummary{
		Classes:         classifier.classes,
		VocabularySize:  vectorizer.Size(),
		TrainSize:       len(train),
		HeldOutSize:     len(heldOut),
		HeldOutAccuracy: accuracy(model, heldOut),
	}
	return model, nil
}

// split shuffles row indices with a seeded PCG source and reserves
// ceil(n*testSize) rows as held out, always leaving one row for training.
func split(rows []domain.TrainingExample, testSize float64, seed uint64) (train, heldOut []domain.TrainingExample) {
	n := len(rows)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	testCount := int(math.Ceil(float64(n) * testSize))
	if testCount >= n {
		testCount = n - 1
	}

	heldOut = make([]domain.TrainingExample, 0, testCount)
	for _, idx := range perm[:testCount] {
		heldOut = append(heldOut, rows[idx])
	}
	train = make([]domain.TrainingExample, 0, n-testCount)
	for _, idx := range perm[testCount:] {
		train = append(train, rows[idx])
	}
	return train, heldOut
}

func accuracy(model *Model, rows []domain.TrainingExample) float64 {
	if len(rows) == 0 {
		return 0
	}
	correct := 0
	for _, ex := range rows {
		label, err := model.Predict(ex.Description)
		if err == nil && label == ex.Category {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}
