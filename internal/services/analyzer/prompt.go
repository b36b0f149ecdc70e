package analyzer

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestor/internal/models"
)

const (
	// Raw document text is clipped before it goes into a prompt
	maxRawTextChars = 1000
	// Chart insights included per chart in the prompt
	maxPromptInsights = 3
)

// BuildAnalysisPrompt assembles the narrative prompt from the persona,
// the extracted metrics, the chart summaries, and the raw document texts.
func BuildAnalysisPrompt(persona Persona, metrics []models.FinancialMetric, charts []models.ChartSummary, rawTexts []string) string {
	metricLines := make([]string, 0, len(metrics))
	for _, m := range metrics {
		metricLines = append(metricLines, fmt.Sprintf("- %s: %v %s (%s)", m.Name, m.Value, m.Unit, m.Period))
	}

	chartBlocks := make([]string, 0, len(charts))
	for _, c := range charts {
		insights := c.Insights
		if len(insights) > maxPromptInsights {
			insights = insights[:maxPromptInsights]
		}
		chartBlocks = append(chartBlocks, fmt.Sprintf("- Chart: %s (Type: %s)\n  Trend: %s\n  Insights: %s",
			c.Title, c.ChartType, c.Trend, strings.Join(insights, ", ")))
	}

	texts := make([]string, 0, len(rawTexts))
	for _, t := range rawTexts {
		if len(t) > maxRawTextChars {
			t = t[:maxRawTextChars] + "..."
		}
		texts = append(texts, t)
	}

	return fmt.Sprintf(`%s Context: %s

Task: %s

Financial Data:
%s

Chart Analysis:
%s

Document Text:
%s

Please provide a comprehensive analysis following this structure:
1. Key Financial Metrics Summary
2. Income and Expense Analysis
3. Balance Sheet Highlights
4. Credit Quality Assessment
5. Strategic and Operational Updates
6. Market Conditions and Outlook
7. Investment Recommendation

Format the output as a professional financial report with clear headings and bullet points.`,
		persona.Role, persona.Context, persona.Task,
		strings.Join(metricLines, "\n"),
		strings.Join(chartBlocks, "\n"),
		strings.Join(texts, "\n\n"))
}

// BuildRecommendationPrompt assembles the follow-up prompt that asks for a
// position call based on the structured summary segments.
func BuildRecommendationPrompt(keyMetrics, marketOutlook string) string {
	return fmt.Sprintf(`Based on the following financial analysis, provide a clear investment recommendation (OVERWEIGHT, NEUTRAL, or UNDERWEIGHT) with brief justification:

Key Metrics:
%s

Market Outlook:
%s

Format: RECOMMENDATION: [OVERWEIGHT/NEUTRAL/UNDERWEIGHT] - [Brief justification]`,
		keyMetrics, marketOutlook)
}
