// Package analyzer turns extracted metrics, chart summaries, and raw
// document text into a narrative analysis. A configured summarizer does the
// writing; without one (or when a call fails) the rule-based fallback fills
// in, so analysis never errors out of the report pipeline.
package analyzer

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

const (
	defaultMaxTokens        = 2000
	recommendationMaxTokens = 200
)

// Returned verbatim as the recommendation when no summarizer is configured
const insufficientDataMessage = "Limited data available for investment recommendation. Configure LLM access for detailed recommendations."

// Result carries one narrative pass over a document set
type Result struct {
	AnalysisType      string            `json:"analysis_type"`
	RawAnalysis       string            `json:"raw_analysis"`
	MetricsCount      int               `json:"metrics_count"`
	ChartsCount       int               `json:"charts_count"`
	TextSources       int               `json:"text_sources"`
	LLMUsed           bool              `json:"llm_used"`
	StructuredSummary map[string]string `json:"structured_summary"`
}

// Service drives the summarizer and falls back to rule-based output
type Service struct {
	summarizer interfaces.Summarizer
	maxTokens  int
	logger     arbor.ILogger
}

// NewService creates an analyzer around a summarizer. A nil summarizer is
// legal and routes everything through the rule-based fallback.
func NewService(summarizer interfaces.Summarizer, maxTokens int, logger arbor.ILogger) *Service {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Service{
		summarizer: summarizer,
		maxTokens:  maxTokens,
		logger:     logger,
	}
}

// Analyze runs one narrative analysis over the supplied inputs
func (s *Service) Analyze(ctx context.Context, metrics []models.FinancialMetric, charts []models.ChartSummary, rawTexts []string, analysisType string) *Result {
	prompt := BuildAnalysisPrompt(PersonaFor(analysisType), metrics, charts, rawTexts)
	text := s.summarize(ctx, prompt, s.maxTokens)

	return &Result{
		AnalysisType:      analysisType,
		RawAnalysis:       text,
		MetricsCount:      len(metrics),
		ChartsCount:       len(charts),
		TextSources:       len(rawTexts),
		LLMUsed:           s.configured(),
		StructuredSummary: StructureAnalysis(text),
	}
}

// Recommend derives the investment recommendation from an analysis result.
// Without a configured summarizer the fixed insufficient-data message is
// returned instead of a position call.
func (s *Service) Recommend(ctx context.Context, result *Result) string {
	if !result.LLMUsed {
		return insufficientDataMessage
	}

	prompt := BuildRecommendationPrompt(
		result.StructuredSummary["key_financial_metrics"],
		result.StructuredSummary["market_outlook"])

	return s.summarize(ctx, prompt, recommendationMaxTokens)
}

func (s *Service) configured() bool {
	return s.summarizer != nil && s.summarizer.IsConfigured()
}

func (s *Service) summarize(ctx context.Context, prompt string, maxTokens int) string {
	if !s.configured() {
		return RuleBasedAnalysis(prompt)
	}

	text, err := s.summarizer.Summarize(ctx, prompt, maxTokens)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Summarizer call failed, using rule-based analysis")
		return RuleBasedAnalysis(prompt)
	}
	return text
}
