package naivebayes

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// sparseVector holds feature weights with indices sorted ascending so that
// every reduction over it runs in the same order.
type sparseVector struct {
	Indices []int
	Values  []float64
}

// Vectorizer is a fitted TF-IDF transform: raw term counts weighted by smooth
// inverse document frequency, rows L2-normalized.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

func FitVectorizer(docs []string) *Vectorizer {
	docFreq := make(map[string]int, 1024)
	for _, doc := range docs {
		seen := make(map[string]struct{}, 16)
		for _, token := range tokenize(doc) {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			docFreq[token]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return &Vectorizer{vocabulary: vocabulary, idf: idf}
}

func (v *Vectorizer) Size() int {
	return len(v.idf)
}

// Transform vectorizes one document. Terms outside the fitted vocabulary are
// ignored; a document with no known terms yields an empty vector.
func (v *Vectorizer) Transform(doc string) sparseVector {
	counts := make(map[int]float64, 16)
	for _, token := range tokenize(doc) {
		if idx, ok := v.vocabulary[token]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return sparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * v.idf[idx]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}
	return sparseVector{Indices: indices, Values: values}
}

// tokenize lowercases s and returns runs of at least two word characters
// (letters, digits, underscore).
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 16)
	var b strings.Builder
	runes := 0
	flush := func() {
		if runes >= 2 {
			out = append(out, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			runes++
			continue
		}
		flush()
	}
	flush()
	return out
}
