// Package reports assembles investor reports from extracted metrics, chart
// summaries, and raw document text, and renders them into a fixed text
// layout. Section building is pure and deterministic; only the narrative
// analysis goes out to a summarizer, and that degrades to rule-based text
// rather than failing.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/analyzer"
)

// Generator builds complete reports. Construct once and share; every call
// to Generate is independent.
type Generator struct {
	analyzer *analyzer.Service
	logger   arbor.ILogger
}

func NewGenerator(analyzerSvc *analyzer.Service, logger arbor.ILogger) *Generator {
	return &Generator{
		analyzer: analyzerSvc,
		logger:   logger,
	}
}

// Generate runs the full pipeline: narrative analysis (with fallback),
// recommendation, all seven section builders, metadata, and appendices.
// It never fails; missing inputs produce templated sections.
func (g *Generator) Generate(ctx context.Context, metrics []models.FinancialMetric, charts []models.ChartSummary, rawTexts []string, reportType, companyName, analysisType string) *models.Report {
	if companyName == "" {
		companyName = "Company"
	}
	if reportType == "" {
		reportType = models.ReportTypeQuarterly
	}
	if analysisType == "" {
		analysisType = models.AnalysisTypeExecutiveSummary
	}

	analysis := g.analyzer.Analyze(ctx, metrics, charts, rawTexts, analysisType)
	recommendation := g.analyzer.Recommend(ctx, analysis)

	now := time.Now()
	period := inferPeriod(reportType, now)

	report := &models.Report{
		Metadata: models.ReportMetadata{
			CompanyName:    companyName,
			ReportType:     reportType,
			GeneratedDate:  now.Format("January 2, 2006"),
			PeriodCovered:  period,
			AnalysisMethod: analysisMethod(analysis.LLMUsed),
		},
		ExecutiveSummary:         buildExecutiveSummary(metrics, charts, companyName, period),
		KeyFinancialMetrics:      buildKeyMetricsSection(metrics),
		IncomeExpenses:           buildIncomeExpensesSection(metrics),
		BalanceSheetHighlights:   buildBalanceSheetSection(metrics),
		CreditQuality:            buildCreditQualitySection(metrics, charts),
		StrategicUpdates:         buildStrategicUpdatesSection(charts),
		MarketOutlook:            buildMarketOutlookSection(charts, analysis.StructuredSummary),
		InvestmentRecommendation: recommendation,
		Appendices: models.ReportAppendices{
			DetailedMetrics: metrics,
			ChartAnalysis:   charts,
			RawAnalysis:     analysis.RawAnalysis,
			ProcessingInfo: models.ProcessingInfo{
				ImagesProcessed:  len(rawTexts),
				MetricsExtracted: len(metrics),
				ChartsAnalyzed:   len(charts),
				LLMUsed:          analysis.LLMUsed,
			},
		},
	}

	g.logger.Info().
		Str("company", companyName).
		Str("report_type", reportType).
		Int("metrics", len(metrics)).
		Int("charts", len(charts)).
		Bool("llm_used", analysis.LLMUsed).
		Msg("Report generated")

	return report
}

// inferPeriod derives the covered-period label from the report type
func inferPeriod(reportType string, now time.Time) string {
	switch reportType {
	case models.ReportTypeQuarterly:
		quarter := (int(now.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", quarter, now.Year())
	case models.ReportTypeAnnual:
		return fmt.Sprintf("FY %d", now.Year())
	default:
		return "Period ending " + now.Format("2006-01-02")
	}
}

func analysisMethod(llmUsed bool) string {
	if llmUsed {
		return "AI-powered Financial Image Analysis"
	}
	return "Rule-based Financial Image Analysis"
}
