package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/models"
)

type stubSummarizer struct {
	configured bool
	response   string
	err        error
	prompts    []string
	maxTokens  []int
}

func (s *stubSummarizer) Summarize(_ context.Context, prompt string, maxTokens int) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.maxTokens = append(s.maxTokens, maxTokens)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubSummarizer) IsConfigured() bool { return s.configured }

func sampleInputs() ([]models.FinancialMetric, []models.ChartSummary, []string) {
	metrics := []models.FinancialMetric{
		{Name: "Net Profit", Value: 690, Unit: "million EUR", Period: "Q3 2024"},
		{Name: "Return on Equity", Value: 11.6, Unit: "%", Period: "Q3 2024"},
	}
	charts := []models.ChartSummary{
		{ChartType: models.ChartTypeBar, Title: "Cost of Risk Trend", Trend: models.TrendDownward,
			Insights: []string{"Cost of risk declining", "Provisions normalized"}},
	}
	texts := []string{"Net profit: $690 million with revenue growth across segments."}
	return metrics, charts, texts
}

func TestAnalyzeWithoutSummarizer(t *testing.T) {
	svc := NewService(nil, 0, arbor.NewLogger())
	metrics, charts, texts := sampleInputs()

	result := svc.Analyze(context.Background(), metrics, charts, texts, models.AnalysisTypeExecutiveSummary)

	require.NotNil(t, result)
	assert.False(t, result.LLMUsed)
	assert.Equal(t, 2, result.MetricsCount)
	assert.Equal(t, 1, result.ChartsCount)
	assert.Equal(t, 1, result.TextSources)
	assert.Contains(t, result.RawAnalysis, "rule-based analysis")
	assert.Contains(t, result.StructuredSummary, "key_financial_metrics")
}

func TestAnalyzeUnconfiguredSummarizer(t *testing.T) {
	stub := &stubSummarizer{configured: false, response: "should not be used"}
	svc := NewService(stub, 2000, arbor.NewLogger())
	metrics, charts, texts := sampleInputs()

	result := svc.Analyze(context.Background(), metrics, charts, texts, models.AnalysisTypeDetailed)

	assert.False(t, result.LLMUsed)
	assert.Empty(t, stub.prompts, "unconfigured summarizer must not be called")
	assert.Contains(t, result.RawAnalysis, "# Financial Analysis Summary")
}

func TestAnalyzeWithSummarizer(t *testing.T) {
	stub := &stubSummarizer{
		configured: true,
		response:   "## Key Financial Metrics\nSolid quarter.\n## Market Conditions and Outlook\nStable rates ahead.",
	}
	svc := NewService(stub, 3000, arbor.NewLogger())
	metrics, charts, texts := sampleInputs()

	result := svc.Analyze(context.Background(), metrics, charts, texts, models.AnalysisTypeExecutiveSummary)

	assert.True(t, result.LLMUsed)
	assert.Equal(t, stub.response, result.RawAnalysis)
	assert.Contains(t, result.StructuredSummary["market_outlook"], "Stable rates")

	require.Len(t, stub.prompts, 1)
	prompt := stub.prompts[0]
	assert.Contains(t, prompt, "Senior Financial Analyst")
	assert.Contains(t, prompt, "- Net Profit: 690 million EUR (Q3 2024)")
	assert.Contains(t, prompt, "- Chart: Cost of Risk Trend (Type: bar_chart)")
	assert.Contains(t, prompt, "7. Investment Recommendation")
	assert.Equal(t, 3000, stub.maxTokens[0])
}

func TestAnalyzeSummarizerFailure(t *testing.T) {
	stub := &stubSummarizer{configured: true, err: errors.New("rate limited")}
	svc := NewService(stub, 2000, arbor.NewLogger())
	metrics, charts, texts := sampleInputs()

	result := svc.Analyze(context.Background(), metrics, charts, texts, models.AnalysisTypeExecutiveSummary)

	// Configuration drives the flag; the failed call is patched over with
	// rule-based text.
	assert.True(t, result.LLMUsed)
	assert.Contains(t, result.RawAnalysis, "rule-based analysis")
}

func TestRecommendWithoutLLM(t *testing.T) {
	svc := NewService(nil, 0, arbor.NewLogger())

	rec := svc.Recommend(context.Background(), &Result{LLMUsed: false})

	assert.Equal(t, "Limited data available for investment recommendation. Configure LLM access for detailed recommendations.", rec)
}

func TestRecommendWithLLM(t *testing.T) {
	stub := &stubSummarizer{configured: true, response: "RECOMMENDATION: NEUTRAL - fairly valued"}
	svc := NewService(stub, 2000, arbor.NewLogger())

	result := &Result{
		LLMUsed: true,
		StructuredSummary: map[string]string{
			"key_financial_metrics": "ROE at 11.6%",
			"market_outlook":        "Rates stabilizing",
		},
	}

	rec := svc.Recommend(context.Background(), result)

	assert.Equal(t, "RECOMMENDATION: NEUTRAL - fairly valued", rec)
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "ROE at 11.6%")
	assert.Contains(t, stub.prompts[0], "Rates stabilizing")
	assert.Equal(t, recommendationMaxTokens, stub.maxTokens[0])
}

func TestPersonaFor(t *testing.T) {
	assert.Equal(t, "Risk Manager", PersonaFor(models.AnalysisTypeRiskAssessment).Role)
	assert.Equal(t, "Quantitative Analyst", PersonaFor(models.AnalysisTypeTrendAnalysis).Role)
	// Unknown types fall back to the executive summary persona
	assert.Equal(t, "Senior Financial Analyst", PersonaFor("nonsense").Role)
}

func TestBuildAnalysisPromptTruncatesTexts(t *testing.T) {
	long := strings.Repeat("x", 1500)

	prompt := BuildAnalysisPrompt(PersonaFor(models.AnalysisTypeExecutiveSummary), nil, nil, []string{long})

	assert.Contains(t, prompt, strings.Repeat("x", 1000)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", 1001))
}
