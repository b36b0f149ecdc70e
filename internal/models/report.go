package models

import "time"

// Report type labels. Anything else is rendered with a generic
// "Period ending" metadata line.
const (
	ReportTypeQuarterly  = "quarterly_report"
	ReportTypeAnnual     = "annual_report"
	ReportTypeInvestment = "investment_analysis"
)

// Analysis type labels select the analyst persona used to build the prompt
const (
	AnalysisTypeExecutiveSummary = "executive_summary"
	AnalysisTypeDetailed         = "detailed_analysis"
	AnalysisTypeRiskAssessment   = "risk_assessment"
	AnalysisTypeTrendAnalysis    = "trend_analysis"
)

// ReportSection is one named block of a generated report. BulletPoints keep
// their build order; Metrics carries category subsets where the builder
// produces them (key metrics only), Initiatives and Outlook are populated by
// the strategic and market builders, Highlights/ChartInsights/Assessment by
// the executive summary builder.
type ReportSection struct {
	Title         string                       `json:"title"`
	BulletPoints  []string                     `json:"bullet_points"`
	Summary       string                       `json:"summary,omitempty"`
	Metrics       map[string][]FinancialMetric `json:"metrics,omitempty"`
	Initiatives   []string                     `json:"strategic_initiatives,omitempty"`
	Outlook       string                       `json:"outlook,omitempty"`
	Highlights    []string                     `json:"key_highlights,omitempty"`
	ChartInsights []string                     `json:"chart_insights,omitempty"`
	Assessment    string                       `json:"overall_assessment,omitempty"`
}

// ReportMetadata describes how and when a report was generated
type ReportMetadata struct {
	CompanyName    string `json:"company_name"`
	ReportType     string `json:"report_type"`
	GeneratedDate  string `json:"generated_date"`  // "January 2, 2006" style
	PeriodCovered  string `json:"period_covered"`  // "Q3 2023", "FY 2023", "Period ending ..."
	AnalysisMethod string `json:"analysis_method"` // AI-powered or rule-based label, echoed in the text footer
}

// ProcessingInfo carries the pipeline counters surfaced in the appendices
type ProcessingInfo struct {
	ImagesProcessed  int  `json:"images_processed"`
	MetricsExtracted int  `json:"metrics_extracted"`
	ChartsAnalyzed   int  `json:"charts_analyzed"`
	LLMUsed          bool `json:"llm_used"`
}

// ReportAppendices holds the full input dumps attached to every report
type ReportAppendices struct {
	DetailedMetrics []FinancialMetric `json:"detailed_metrics"`
	ChartAnalysis   []ChartSummary    `json:"chart_analysis"`
	RawAnalysis     string            `json:"raw_analysis"`
	ProcessingInfo  ProcessingInfo    `json:"processing_info"`
}

// Report is the assembled investor report. It is built once by the generator
// and never mutated afterwards; formatting and serialization read from it.
type Report struct {
	Metadata                 ReportMetadata   `json:"metadata"`
	ExecutiveSummary         ReportSection    `json:"executive_summary"`
	KeyFinancialMetrics      ReportSection    `json:"key_financial_metrics"`
	IncomeExpenses           ReportSection    `json:"income_expenses"`
	BalanceSheetHighlights   ReportSection    `json:"balance_sheet_highlights"`
	CreditQuality            ReportSection    `json:"credit_quality"`
	StrategicUpdates         ReportSection    `json:"strategic_updates"`
	MarketOutlook            ReportSection    `json:"market_outlook"`
	InvestmentRecommendation string           `json:"investment_recommendation"`
	Appendices               ReportAppendices `json:"appendices"`
}

// ReportRecord is the persisted wrapper around a generated report
type ReportRecord struct {
	ID            string    `json:"id"`
	ScanID        string    `json:"scan_id,omitempty" badgerhold:"index"` // Empty for reports generated via POST /api/reports
	CompanyName   string    `json:"company_name" badgerhold:"index"`
	ReportType    string    `json:"report_type"`
	Report        *Report   `json:"report"`
	FormattedText string    `json:"formatted_text"`
	CreatedAt     time.Time `json:"created_at" badgerhold:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GenerateReportRequest is the POST /api/reports payload. Metrics, charts and
// texts are caller-supplied; the scan pipeline is bypassed entirely.
type GenerateReportRequest struct {
	CompanyName  string            `json:"company_name" validate:"required"`
	ReportType   string            `json:"report_type" validate:"omitempty,max=64"`
	AnalysisType string            `json:"analysis_type" validate:"omitempty,oneof=executive_summary detailed_analysis risk_assessment trend_analysis"`
	Metrics      []FinancialMetric `json:"metrics"`
	Charts       []ChartSummary    `json:"charts"`
	Texts        []string          `json:"texts"`
}
