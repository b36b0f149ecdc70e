package reports

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/analyzer"
)

func newOfflineGenerator() *Generator {
	logger := arbor.NewLogger()
	return NewGenerator(analyzer.NewService(nil, 0, logger), logger)
}

func TestGenerateQuarterlyReport(t *testing.T) {
	gen := newOfflineGenerator()
	rawTexts := []string{"ABN AMRO Bank Q3 2024 Quarterly Report. Net profit: 690 million with fee growth."}

	report := gen.Generate(context.Background(), sampleBankMetrics(), sampleCharts(), rawTexts,
		models.ReportTypeQuarterly, "ABN AMRO Bank", models.AnalysisTypeExecutiveSummary)

	require.NotNil(t, report)

	now := time.Now()
	wantPeriod := fmt.Sprintf("Q%d %d", (int(now.Month())-1)/3+1, now.Year())
	assert.Equal(t, wantPeriod, report.Metadata.PeriodCovered)
	assert.Equal(t, "ABN AMRO Bank", report.Metadata.CompanyName)
	assert.Equal(t, models.ReportTypeQuarterly, report.Metadata.ReportType)

	assert.Len(t, report.KeyFinancialMetrics.BulletPoints, 8)

	// No summarizer configured: fixed recommendation and honest counters
	assert.Equal(t, "Limited data available for investment recommendation. Configure LLM access for detailed recommendations.", report.InvestmentRecommendation)
	assert.False(t, report.Appendices.ProcessingInfo.LLMUsed)
	assert.Equal(t, 1, report.Appendices.ProcessingInfo.ImagesProcessed)
	assert.Equal(t, 14, report.Appendices.ProcessingInfo.MetricsExtracted)
	assert.Equal(t, 1, report.Appendices.ProcessingInfo.ChartsAnalyzed)
	assert.Contains(t, report.Appendices.RawAnalysis, "# Financial Analysis Summary")
}

func TestGenerateEmptyInputs(t *testing.T) {
	gen := newOfflineGenerator()

	report := gen.Generate(context.Background(), nil, nil, nil, "", "", "")

	require.NotNil(t, report)
	assert.Equal(t, "Company", report.Metadata.CompanyName)
	assert.Equal(t, models.ReportTypeQuarterly, report.Metadata.ReportType)

	for _, section := range []models.ReportSection{
		report.ExecutiveSummary,
		report.KeyFinancialMetrics,
		report.IncomeExpenses,
		report.BalanceSheetHighlights,
		report.CreditQuality,
		report.StrategicUpdates,
		report.MarketOutlook,
	} {
		assert.NotEmpty(t, section.Title)
	}

	assert.Equal(t, "No specific metrics identified in the analysis.", report.KeyFinancialMetrics.Summary)
	assert.Len(t, report.StrategicUpdates.BulletPoints, 3, "generic strategic bullets expected")
	assert.Equal(t, 0, report.Appendices.ProcessingInfo.MetricsExtracted)
}

func TestInferPeriod(t *testing.T) {
	tests := []struct {
		name       string
		reportType string
		now        time.Time
		want       string
	}{
		{"january is Q1", models.ReportTypeQuarterly, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Q1 2024"},
		{"september is Q3", models.ReportTypeQuarterly, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), "Q3 2024"},
		{"december is Q4", models.ReportTypeQuarterly, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "Q4 2024"},
		{"annual", models.ReportTypeAnnual, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "FY 2024"},
		{"anything else", models.ReportTypeInvestment, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), "Period ending 2024-05-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferPeriod(tt.reportType, tt.now); got != tt.want {
				t.Errorf("inferPeriod(%q) = %q, want %q", tt.reportType, got, tt.want)
			}
		})
	}
}

func TestFormatAsTextLayout(t *testing.T) {
	gen := newOfflineGenerator()
	report := gen.Generate(context.Background(), sampleBankMetrics(), sampleCharts(), nil,
		models.ReportTypeQuarterly, "ABN AMRO Bank", models.AnalysisTypeExecutiveSummary)

	text := FormatAsText(report)

	assert.True(t, strings.HasPrefix(text, "# ABN AMRO Bank Quarterly Report (Q"), "title line: %q", firstLine(text))

	wantHeadings := []string{
		"## Executive Summary",
		"## Key Financial Metrics",
		"## Income and Expenses",
		"## Balance Sheet Highlights",
		"## Credit Quality",
		"## Strategic and Operational Updates",
		"## Market Conditions and Outlook",
		"## Investment Recommendation",
	}
	lastIdx := -1
	for _, heading := range wantHeadings {
		idx := strings.Index(text, heading)
		require.GreaterOrEqual(t, idx, 0, "missing heading %q", heading)
		assert.Greater(t, idx, lastIdx, "heading %q out of order", heading)
		lastIdx = idx
	}

	assert.Contains(t, text, "● Net Profit: 690 MILLION EUR")
	assert.True(t, strings.HasSuffix(text, "*"), "footer should close the document")
	assert.Contains(t, text, "---\n*Report generated on "+report.Metadata.GeneratedDate)
}

func TestFormatAsTextDeterministic(t *testing.T) {
	gen := newOfflineGenerator()
	report := gen.Generate(context.Background(), sampleBankMetrics(), sampleCharts(), nil,
		models.ReportTypeQuarterly, "ABN AMRO Bank", "")

	assert.Equal(t, FormatAsText(report), FormatAsText(report))
}

func TestFormatAsTextEmptySectionsKeepHeadings(t *testing.T) {
	gen := newOfflineGenerator()
	report := gen.Generate(context.Background(), nil, nil, nil, models.ReportTypeAnnual, "Company", "")

	text := FormatAsText(report)

	// Credit quality has no metrics and no charts, heading still renders
	assert.Contains(t, text, "## Credit Quality\n")
	assert.Contains(t, text, "## Income and Expenses\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
