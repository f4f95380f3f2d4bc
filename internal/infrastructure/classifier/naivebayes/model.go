package naivebayes

import (
	"errors"
	"math"
	"slices"
	"sort"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// multinomialNB is a multinomial naive Bayes classifier over TF-IDF features
// with additive (Laplace) smoothing.
type multinomialNB struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64
}

func fitMultinomialNB(features []sparseVector, labels []string, numFeatures int, alpha float64) *multinomialNB {
	classes := slices.Clone(labels)
	sort.Strings(classes)
	classes = slices.Compact(classes)

	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	classCount := make([]float64, len(classes))
	featureCount := make([][]float64, len(classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, numFeatures)
	}
	for row, vec := range features {
		c := classIndex[labels[row]]
		classCount[c]++
		for i, idx := range vec.Indices {
			featureCount[c][idx] += vec.Values[i]
		}
	}

	total := float64(len(labels))
	prior := make([]float64, len(classes))
	logProb := make([][]float64, len(classes))
	for c := range classes {
		prior[c] = math.Log(classCount[c] / total)

		var sum float64
		for _, v := range featureCount[c] {
			sum += v
		}
		denom := math.Log(sum + alpha*float64(numFeatures))
		logProb[c] = make([]float64, numFeatures)
		for f, v := range featureCount[c] {
			logProb[c][f] = math.Log(v+alpha) - denom
		}
	}

	return &multinomialNB{
		classes:        classes,
		classLogPrior:  prior,
		featureLogProb: logProb,
	}
}

// predict returns the class with the highest joint log likelihood; ties go to
// the lexically first class.
func (m *multinomialNB) predict(vec sparseVector) string {
	best := 0
	bestScore := math.Inf(-1)
	for c := range m.classes {
		score := m.classLogPrior[c]
		for i, idx := range vec.Indices {
			score += vec.Values[i] * m.featureLogProb[c][idx]
		}
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	return m.classes[best]
}

// Model is a fitted vectorizer and classifier pair.
type Model struct {
	vectorizer *Vectorizer
	classifier *multinomialNB
	summary    domain.ModelSummary
}

func (m *Model) Predict(text string) (string, error) {
	if m == nil || m.vectorizer == nil || m.classifier == nil || len(m.classifier.classes) == 0 {
		return "", domain.WrapError(domain.ErrPrediction, "naive bayes predict", errors.New("model is not fitted"))
	}
	return m.classifier.predict(m.vectorizer.Transform(text)), nil
}

func (m *Model) Summary() domain.ModelSummary {
	out := m.summary
	out.Classes = slices.Clone(m.summary.Classes)
	return out
}
