package reports

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/ternarybob/quaestor/internal/models"
)

// Fixed section titles, also used by the text formatter
const (
	titleExecutiveSummary = "Executive Summary"
	titleKeyMetrics       = "Key Financial Metrics"
	titleIncomeExpenses   = "Income and Expenses"
	titleBalanceSheet     = "Balance Sheet Highlights"
	titleCreditQuality    = "Credit Quality"
	titleStrategic        = "Strategic and Operational Updates"
	titleMarketOutlook    = "Market Conditions and Outlook"
)

const keyMetricsLimit = 8

// Shown when no chart carries strategic content
var genericStrategicBullets = []string{
	bulletGlyph + "Continued focus on digital transformation and operational efficiency",
	bulletGlyph + "Enhanced risk management frameworks implemented",
	bulletGlyph + "Strategic investments in technology and customer experience",
}

var strategicInitiatives = []string{
	"Digital transformation initiatives",
	"Sustainable finance expansion",
	"Operational efficiency improvements",
}

// The balance-sheet change indicator is presentation filler, not a computed
// trend; the hash only keeps the choice stable for a given metric name.
var changeIndicators = []string{
	"up from previous period",
	"down from previous period",
	"stable compared to previous period",
}

func changeIndicator(metricName string) string {
	h := fnv.New32a()
	h.Write([]byte(metricName))
	return changeIndicators[h.Sum32()%3]
}

func trendFromName(metricName string) string {
	name := strings.ToLower(metricName)
	switch {
	case strings.Contains(name, "growth") || strings.Contains(name, "increase") || strings.Contains(name, "rise"):
		return "upward trend"
	case strings.Contains(name, "decline") || strings.Contains(name, "decrease") || strings.Contains(name, "fall"):
		return "downward trend"
	default:
		return "stable performance"
	}
}

func chartTitleContains(chart models.ChartSummary, keywords ...string) bool {
	title := strings.ToLower(chart.Title)
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func insightBullets(chart models.ChartSummary, limit int) []string {
	insights := chart.Insights
	if len(insights) > limit {
		insights = insights[:limit]
	}
	bullets := make([]string, 0, len(insights))
	for _, insight := range insights {
		bullets = append(bullets, bulletGlyph+insight)
	}
	return bullets
}

func buildKeyMetricsSection(metrics []models.FinancialMetric) models.ReportSection {
	top := metrics
	if len(top) > keyMetricsLimit {
		top = top[:keyMetricsLimit]
	}

	bullets := make([]string, 0, len(top))
	for _, m := range top {
		bullets = append(bullets, bulletLine(m.Name, formatKeyMetricValue(m), ""))
	}

	summary := "No specific metrics identified in the analysis."
	if len(metrics) > 0 {
		summary = fmt.Sprintf("Analysis identified %d key financial indicators across profitability, efficiency, and capital adequacy dimensions.", len(metrics))
	}

	return models.ReportSection{
		Title:        titleKeyMetrics,
		BulletPoints: bullets,
		Summary:      summary,
		Metrics: map[string][]models.FinancialMetric{
			BucketProfitability: filterByKeywords(metrics, bucketKeywords[BucketProfitability]),
			BucketEfficiency:    filterByKeywords(metrics, bucketKeywords[BucketEfficiency]),
			BucketCapital:       filterByKeywords(metrics, bucketKeywords[BucketCapital]),
		},
	}
}

func buildIncomeExpensesSection(metrics []models.FinancialMetric) models.ReportSection {
	income := filterByKeywords(metrics, bucketKeywords[BucketIncome])
	expenses := filterByKeywords(metrics, bucketKeywords[BucketExpense])

	bullets := make([]string, 0, len(income)+len(expenses))
	for _, m := range income {
		bullets = append(bullets, bulletLine(m.Name, formatIncomeValue(m), trendFromName(m.Name)))
	}
	for _, m := range expenses {
		bullets = append(bullets, bulletLine(m.Name, formatIncomeValue(m), ""))
	}

	return models.ReportSection{
		Title:        titleIncomeExpenses,
		BulletPoints: bullets,
		Summary:      fmt.Sprintf("Revenue streams show %d key indicators while operating expenses encompass %d major cost categories.", len(income), len(expenses)),
		Metrics: map[string][]models.FinancialMetric{
			BucketIncome:  income,
			BucketExpense: expenses,
		},
	}
}

func buildBalanceSheetSection(metrics []models.FinancialMetric) models.ReportSection {
	assets := filterByKeywords(metrics, bucketKeywords[BucketAsset])
	liabilities := filterByKeywords(metrics, bucketKeywords[BucketLiability])
	equity := filterByKeywords(metrics, []string{"equity", "capital"})

	combined := make([]models.FinancialMetric, 0, len(assets)+len(liabilities)+len(equity))
	combined = append(combined, assets...)
	combined = append(combined, liabilities...)
	combined = append(combined, equity...)

	bullets := make([]string, 0, len(combined))
	for _, m := range combined {
		bullets = append(bullets, bulletLine(m.Name, formatBalanceValue(m), changeIndicator(m.Name)))
	}

	return models.ReportSection{
		Title:        titleBalanceSheet,
		BulletPoints: bullets,
		Summary:      fmt.Sprintf("Balance sheet analysis covers %d asset categories, %d liability components, and %d equity measures.", len(assets), len(liabilities), len(equity)),
		Metrics: map[string][]models.FinancialMetric{
			"assets":      assets,
			"liabilities": liabilities,
			"equity":      equity,
		},
	}
}

func buildCreditQualitySection(metrics []models.FinancialMetric, charts []models.ChartSummary) models.ReportSection {
	credit := filterByKeywords(metrics, bucketKeywords[BucketCreditRisk])

	bullets := make([]string, 0, len(credit))
	for _, m := range credit {
		bullets = append(bullets, bulletLine(m.Name, formatCreditValue(m), ""))
	}
	for _, chart := range charts {
		if chartTitleContains(chart, "risk", "credit") {
			bullets = append(bullets, insightBullets(chart, 2)...)
		}
	}

	return models.ReportSection{
		Title:        titleCreditQuality,
		BulletPoints: bullets,
		Summary:      fmt.Sprintf("Credit quality assessment based on %d risk indicators and analysis of %d risk-related charts.", len(credit), len(charts)),
		Metrics: map[string][]models.FinancialMetric{
			"credit": credit,
		},
	}
}

func buildStrategicUpdatesSection(charts []models.ChartSummary) models.ReportSection {
	var bullets []string
	for _, chart := range charts {
		if chartTitleContains(chart, "strategic", "operational", "digital", "sustainable") {
			bullets = append(bullets, insightBullets(chart, 3)...)
		}
	}
	if len(bullets) == 0 {
		bullets = append(bullets, genericStrategicBullets...)
	}

	return models.ReportSection{
		Title:        titleStrategic,
		BulletPoints: bullets,
		Initiatives:  append([]string(nil), strategicInitiatives...),
	}
}

func buildMarketOutlookSection(charts []models.ChartSummary, structuredSummary map[string]string) models.ReportSection {
	var bullets []string
	for _, chart := range charts {
		if chartTitleContains(chart, "market", "outlook", "trend", "growth") {
			bullets = append(bullets, insightBullets(chart, 2)...)
		}
	}

	outlookText := structuredSummary["market_outlook"]
	if outlookText != "" {
		clipped := outlookText
		if len(clipped) > 100 {
			clipped = clipped[:100]
		}
		bullets = append(bullets, bulletGlyph+clipped+"...")
	}

	return models.ReportSection{
		Title:        titleMarketOutlook,
		BulletPoints: bullets,
		Summary:      outlookText,
		Outlook:      "Management maintains cautious optimism while monitoring macroeconomic conditions and regulatory developments.",
	}
}

func buildExecutiveSummary(metrics []models.FinancialMetric, charts []models.ChartSummary, companyName, period string) models.ReportSection {
	highlights := make([]string, 0, 5)
	for _, m := range metrics {
		if len(highlights) == 5 {
			break
		}
		highlights = append(highlights, fmt.Sprintf("%s: %v %s", m.Name, m.Value, m.Unit))
	}

	var chartInsights []string
	for _, chart := range charts {
		insights := chart.Insights
		if len(insights) > 2 {
			insights = insights[:2]
		}
		chartInsights = append(chartInsights, insights...)
		if len(chartInsights) >= 5 {
			chartInsights = chartInsights[:5]
			break
		}
	}
	if len(chartInsights) > 3 {
		chartInsights = chartInsights[:3]
	}

	summary := fmt.Sprintf(`Summary of %s %s

This comprehensive analysis examines the company's financial performance through advanced image processing and AI-powered analysis. The report covers key financial metrics, operational efficiency, balance sheet strength, and strategic positioning.

Key highlights include %d major financial indicators and analysis of %d visual data representations.`,
		companyName, period, len(highlights), len(charts))

	return models.ReportSection{
		Title:         titleExecutiveSummary,
		Summary:       summary,
		Highlights:    highlights,
		ChartInsights: chartInsights,
		Assessment:    overallAssessment(metrics),
	}
}

func overallAssessment(metrics []models.FinancialMetric) string {
	positive := 0
	for _, m := range metrics {
		name := strings.ToLower(m.Name)
		if strings.Contains(name, "growth") || strings.Contains(name, "increase") {
			positive++
		}
	}
	total := len(metrics)

	switch {
	case float64(positive) > float64(total)/2:
		return "Strong financial performance with positive momentum across key metrics"
	case float64(positive) < float64(total)/3:
		return "Challenging conditions requiring strategic focus and operational improvements"
	default:
		return "Mixed performance with areas of strength and opportunities for improvement"
	}
}
