package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// Labels recognized in report text. Matching is case-sensitive.
const (
	LabelReportNumber = "Report Number:"
	LabelDateTime     = "Date & Time:"
	LabelOfficer      = "Reporting Officer:"
	LabelLocation     = "Incident Location:"
	LabelCoordinates  = "Coordinates:"
	LabelDescription  = "Detailed Description:"
	LabelDistrict     = "Police District:"
	LabelResolution   = "Resolution:"
	LabelSuspect      = "Suspect Description:"
	LabelVictim       = "Victim Information:"
)

var labels = []string{
	LabelReportNumber,
	LabelDateTime,
	LabelOfficer,
	LabelLocation,
	LabelCoordinates,
	LabelDescription,
	LabelDistrict,
	LabelResolution,
	LabelSuspect,
	LabelVictim,
}

// Rule extracts one field. Apply receives the first capture group of the
// first match and reports whether it produced a valid value; otherwise
// Default is applied.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
	Apply   func(r *domain.Report, capture string) bool
	Default func(r *domain.Report)
}

// DefaultRules returns the rule table for the standard report layout, one
// rule per field in export order.
func DefaultRules() []Rule {
	return []Rule{
		textRule("Report Number", `Report Number:\s*(\d{4}-\d+)\b`, func(r *domain.Report) *string { return &r.ReportNumber }),
		dateTimeRule(),
		textRule("Reporting Officer", `Reporting Officer:\s*(.+)`, func(r *domain.Report) *string { return &r.Officer }),
		textRule("Incident Location", `Incident Location:\s*(.+)`, func(r *domain.Report) *string { return &r.Location }),
		coordinateRule("Latitude", `Coordinates:\s*\(\s*([-\d.]+)\s*,`, 90, func(r *domain.Report) **float64 { return &r.Latitude }),
		coordinateRule("Longitude", `Coordinates:\s*\(\s*[-\d.]+\s*,\s*([-\d.]+)\s*\)`, 180, func(r *domain.Report) **float64 { return &r.Longitude }),
		descriptionRule(),
		textRule("Police District", `Police District:\s*(.+)`, func(r *domain.Report) *string { return &r.District }),
		textRule("Resolution", `Resolution:\s*(.+)`, func(r *domain.Report) *string { return &r.Resolution }),
		textRule("Suspect Description", `Suspect Description:\s*(.+)`, func(r *domain.Report) *string { return &r.Suspect }),
		textRule("Victim Information", `Victim Information:\s*(.+)`, func(r *domain.Report) *string { return &r.Victim }),
	}
}

func textRule(field, pattern string, target func(*domain.Report) *string) Rule {
	return Rule{
		Field:   field,
		Pattern: regexp.MustCompile(pattern),
		Apply: func(r *domain.Report, capture string) bool {
			value := strings.TrimSpace(capture)
			if value == "" || startsWithLabel(value) {
				return false
			}
			*target(r) = value
			return true
		},
		Default: func(r *domain.Report) { *target(r) = domain.NotSpecified },
	}
}

func dateTimeRule() Rule {
	rule := textRule("Date & Time", `Date & Time:\s*(\d{4}-\d{2}-\d{2}[ \t]+\d{2}:\d{2})`, func(r *domain.Report) *string { return &r.DateTime })
	apply := rule.Apply
	rule.Apply = func(r *domain.Report, capture string) bool {
		return apply(r, strings.Join(strings.Fields(capture), " "))
	}
	return rule
}

// descriptionRule captures the narrative up to the next recognized label at
// the start of a line, or the end of the text.
func descriptionRule() Rule {
	quoted := make([]string, 0, len(labels))
	for _, label := range labels {
		quoted = append(quoted, regexp.QuoteMeta(label))
	}
	pattern := `(?s)Detailed Description:\s*(.+?)(?:\n[ \t]*(?:` + strings.Join(quoted, "|") + `)|\z)`

	return Rule{
		Field:   "Detailed Description",
		Pattern: regexp.MustCompile(pattern),
		Apply: func(r *domain.Report, capture string) bool {
			value := joinLines(capture)
			if value == "" || startsWithLabel(value) {
				return false
			}
			r.Description = value
			return true
		},
		Default: func(r *domain.Report) { r.Description = domain.NotSpecified },
	}
}

func coordinateRule(field, pattern string, limit float64, target func(*domain.Report) **float64) Rule {
	return Rule{
		Field:   field,
		Pattern: regexp.MustCompile(pattern),
		Apply: func(r *domain.Report, capture string) bool {
			v, err := strconv.ParseFloat(strings.TrimSpace(capture), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
				return false
			}
			*target(r) = &v
			return true
		},
		Default: func(r *domain.Report) { *target(r) = nil },
	}
}

func startsWithLabel(value string) bool {
	for _, label := range labels {
		if strings.HasPrefix(value, label) {
			return true
		}
	}
	return false
}

func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
