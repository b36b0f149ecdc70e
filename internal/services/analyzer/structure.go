package analyzer

import (
	"regexp"
	"strings"
)

// sectionPatterns route narrative lines into named summary segments. Order
// matters: a line matching several patterns lands in the first one.
var sectionPatterns = []struct {
	Key     string
	Pattern *regexp.Regexp
}{
	{"key_financial_metrics", regexp.MustCompile(`(?i)(key financial metrics|financial metrics|metrics summary)`)},
	{"income_expenses", regexp.MustCompile(`(?i)(income and expenses|income statement|revenue)`)},
	{"balance_sheet", regexp.MustCompile(`(?i)(balance sheet|assets and liabilities)`)},
	{"credit_quality", regexp.MustCompile(`(?i)(credit quality|risk assessment|credit risk)`)},
	{"strategic_updates", regexp.MustCompile(`(?i)(strategic|operational|business updates)`)},
	{"market_outlook", regexp.MustCompile(`(?i)(market conditions|outlook|future)`)},
	{"recommendation", regexp.MustCompile(`(?i)(recommendation|conclusion|investment advice)`)},
}

// StructureAnalysis splits a narrative into named sections. A line matching
// a section pattern opens that section (the header line included); all other
// lines accumulate under the current section, starting with "introduction".
func StructureAnalysis(analysisText string) map[string]string {
	sections := make(map[string]string)

	currentSection := "introduction"
	var currentContent []string

	flush := func() {
		if len(currentContent) > 0 {
			sections[currentSection] = strings.TrimSpace(strings.Join(currentContent, "\n"))
		}
	}

	for _, line := range strings.Split(analysisText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matched := false
		for _, sp := range sectionPatterns {
			if sp.Pattern.MatchString(line) {
				flush()
				currentSection = sp.Key
				currentContent = []string{line}
				matched = true
				break
			}
		}

		if !matched {
			currentContent = append(currentContent, line)
		}
	}
	flush()

	return sections
}
