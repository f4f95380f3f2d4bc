// Package extraction turns free-text crime report documents into structured
// reports using a fixed table of labeled patterns.
package extraction

import (
	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

type Extractor struct {
	rules []Rule
}

func NewExtractor() *Extractor {
	return &Extractor{rules: DefaultRules()}
}

func NewExtractorWithRules(rules []Rule) *Extractor {
	return &Extractor{rules: rules}
}

// Extract applies every rule independently. Fields that do not match fall
// back to their defaults; the predicted category starts as unknown.
func (e *Extractor) Extract(text string) domain.Report {
	report, _ := e.ExtractWithMisses(text)
	return report
}

// ExtractWithMisses also returns the names of the fields that fell back to a
// default, in rule order.
func (e *Extractor) ExtractWithMisses(text string) (domain.Report, []string) {
	report := domain.Report{PredictedCategory: domain.UnknownCategory}
	var misses []string

	for _, rule := range e.rules {
		match := rule.Pattern.FindStringSubmatch(text)
		if len(match) > 1 && rule.Apply(&report, match[1]) {
			continue
		}
		rule.Default(&report)
		misses = append(misses, rule.Field)
	}
	return report, misses
}
