package scanner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/quaestor/internal/models"
)

// chartTitleKeywords mark a line as a probable chart title
var chartTitleKeywords = []string{"chart", "graph", "figure"}

// trendWords feed the "Chart shows ... patterns" insight, in match order
var trendWords = []string{"increase", "decrease", "growth", "decline", "up", "down", "rise", "fall"}

// positiveWords and negativeWords drive overall trend detection
var (
	positiveWords = []string{"increase", "growth", "rise", "up", "improve", "gain"}
	negativeWords = []string{"decrease", "decline", "fall", "down", "drop", "loss"}
)

var percentagePattern = regexp.MustCompile(`(\d+\.?\d*)%`)

// AnalyzeChart classifies a chart from a document's extracted text. It never
// returns an error: internal faults map to a summary with chart type "error"
// so one bad document cannot abort a scan.
func AnalyzeChart(text string) (summary models.ChartSummary) {
	defer func() {
		if r := recover(); r != nil {
			summary = models.ChartSummary{
				ChartType: models.ChartTypeError,
				Title:     fmt.Sprintf("Chart analysis failed: %v", r),
				Trend:     models.TrendUnknown,
				Insights:  []string{"Error analyzing chart"},
			}
		}
	}()

	chartType := classifyChartType(text)
	xLabel, yLabel := extractAxisLabels(text)

	return models.ChartSummary{
		ChartType:  chartType,
		Title:      extractChartTitle(text),
		XAxisLabel: xLabel,
		YAxisLabel: yLabel,
		Trend:      detectTrend(text),
		Insights:   chartInsights(chartType, text),
	}
}

// classifyChartType keys off chart vocabulary in the text. Bar wins over
// line wins over pie when several words appear.
func classifyChartType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "bar"):
		return models.ChartTypeBar
	case strings.Contains(lower, "line"):
		return models.ChartTypeLine
	case strings.Contains(lower, "pie"):
		return models.ChartTypePie
	}
	return models.ChartTypeUnknown
}

// extractChartTitle returns the first of the leading three lines that
// mentions a chart, graph or figure
func extractChartTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, keyword := range chartTitleKeywords {
			if strings.Contains(lower, keyword) {
				return strings.TrimSpace(line)
			}
		}
	}

	return "Untitled Chart"
}

// extractAxisLabels scans every line: time-flavored lines become the x
// label, value-flavored lines the y label. Later matches win, so labels
// printed near the bottom of a chart take precedence.
func extractAxisLabels(text string) (string, string) {
	var xLabel, yLabel string

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "axis") || containsAny(lower, "time", "year", "quarter", "month"):
			xLabel = strings.TrimSpace(line)
		case strings.Contains(line, "%") || strings.Contains(lower, "ratio") || strings.Contains(lower, "value"):
			yLabel = strings.TrimSpace(line)
		}
	}

	return xLabel, yLabel
}

// chartInsights builds ordered insight sentences: trend patterns first, key
// percentages second, then a suitability note for the recognized type
func chartInsights(chartType string, text string) []string {
	insights := make([]string, 0, 3)
	lower := strings.ToLower(text)

	var found []string
	for _, word := range trendWords {
		if strings.Contains(lower, word) {
			found = append(found, word)
		}
	}
	if len(found) > 0 {
		if len(found) > 2 {
			found = found[:2]
		}
		insights = append(insights, fmt.Sprintf("Chart shows %s patterns", strings.Join(found, " and ")))
	}

	matches := percentagePattern.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		values := make([]string, 0, 3)
		for _, m := range matches {
			values = append(values, m[1])
			if len(values) == 3 {
				break
			}
		}
		insights = append(insights, fmt.Sprintf("Key percentage values: %s%%", strings.Join(values, ", ")))
	}

	switch chartType {
	case models.ChartTypeBar:
		insights = append(insights, "Bar chart suitable for comparing discrete categories")
	case models.ChartTypeLine:
		insights = append(insights, "Line chart ideal for showing trends over time")
	case models.ChartTypePie:
		insights = append(insights, "Pie chart shows proportional distribution")
	}

	return insights
}

// detectTrend compares positive and negative vocabulary hits
func detectTrend(text string) string {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return models.TrendUpward
	case negative > positive:
		return models.TrendDownward
	}
	return models.TrendStable
}

func containsAny(s string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
