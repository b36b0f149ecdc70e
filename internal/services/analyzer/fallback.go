package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// extractedMetric is one figure pulled out of free text by the fallback
type extractedMetric struct {
	Type  string
	Value float64
	Unit  string // "currency", "percentage", or "units"
}

// metricPatterns maps canonical metric types to the text patterns that
// reveal them. Order fixes the order metrics appear in the summary.
var metricPatterns = []struct {
	Type    string
	Unit    string
	Pattern *regexp.Regexp
}{
	{"net_profit", "currency", regexp.MustCompile(`(?i)net profit[:\s]*\$?([\d,]+\.?\d*)`)},
	{"revenue", "currency", regexp.MustCompile(`(?i)revenue[:\s]*\$?([\d,]+\.?\d*)`)},
	{"eps", "units", regexp.MustCompile(`(?i)eps?[:\s]*\$?([\d,]+\.?\d*)`)},
	{"roe", "percentage", regexp.MustCompile(`(?i)roe[:\s]*([\d,]+\.?\d*)%?`)},
	{"assets", "currency", regexp.MustCompile(`(?i)total assets[:\s]*\$?([\d,]+\.?\d*)`)},
	{"liabilities", "currency", regexp.MustCompile(`(?i)total liabilities[:\s]*\$?([\d,]+\.?\d*)`)},
	{"equity", "currency", regexp.MustCompile(`(?i)total equity[:\s]*\$?([\d,]+\.?\d*)`)},
}

// trendVocabulary is checked by substring membership; order fixes the order
// trend words are reported.
var trendVocabulary = []string{"increase", "decrease", "growth", "decline", "up", "down", "rise", "fall", "improve", "worsen"}

var (
	positiveTrends = map[string]bool{"increase": true, "growth": true, "rise": true, "improve": true}
	negativeTrends = map[string]bool{"decrease": true, "decline": true, "fall": true, "worsen": true}
)

// RuleBasedAnalysis produces a templated narrative from the prompt text
// alone. It stands in for the summarizer whenever no provider is configured
// or a provider call fails.
func RuleBasedAnalysis(prompt string) string {
	metrics := extractMetricsFromText(prompt)
	trends := extractTrendsFromText(prompt)

	return strings.TrimSpace(fmt.Sprintf(`# Financial Analysis Summary

## Key Financial Metrics
%s

## Trend Analysis
%s

## Investment Recommendation
Based on the available data, this analysis suggests:
- Monitor key financial metrics closely
- Review trend patterns for investment decisions
- Consider additional data sources for comprehensive analysis

*Note: This is a rule-based analysis. For more sophisticated insights, please configure LLM API access.*`,
		formatMetricsSummary(metrics),
		formatTrendAnalysis(trends)))
}

func extractMetricsFromText(text string) []extractedMetric {
	var metrics []extractedMetric

	for _, p := range metricPatterns {
		for _, match := range p.Pattern.FindAllStringSubmatch(text, -1) {
			value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
			if err != nil {
				continue // malformed numbers are dropped, not reported
			}
			metrics = append(metrics, extractedMetric{Type: p.Type, Value: value, Unit: p.Unit})
		}
	}

	return metrics
}

func extractTrendsFromText(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, word := range trendVocabulary {
		if strings.Contains(lower, word) {
			found = append(found, word)
		}
	}
	return found
}

func formatMetricsSummary(metrics []extractedMetric) string {
	if len(metrics) == 0 {
		return "No specific metrics identified in the document."
	}

	if len(metrics) > 5 {
		metrics = metrics[:5]
	}

	lines := make([]string, 0, len(metrics))
	for _, m := range metrics {
		name := titleCase(strings.ReplaceAll(m.Type, "_", " "))
		var value string
		if m.Unit == "currency" {
			value = "$" + humanize.FormatFloat("#,###.##", m.Value)
		} else {
			value = fmt.Sprintf("%.2f%%", m.Value)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", name, value))
	}

	return strings.Join(lines, "\n")
}

func formatTrendAnalysis(trends []string) string {
	if len(trends) == 0 {
		return "No clear trend patterns identified."
	}

	summary := "Identified trends: " + strings.Join(trends, ", ")

	positive, negative := 0, 0
	for _, word := range trends {
		if positiveTrends[word] {
			positive++
		}
		if negativeTrends[word] {
			negative++
		}
	}

	switch {
	case positive > negative:
		summary += "\nOverall positive momentum detected."
	case negative > positive:
		summary += "\nNegative trends require attention."
	default:
		summary += "\nMixed or stable trends observed."
	}

	return summary
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
