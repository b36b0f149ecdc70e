package models

// Chart type labels produced by classification
const (
	ChartTypeBar     = "bar_chart"
	ChartTypeLine    = "line_chart"
	ChartTypePie     = "pie_chart"
	ChartTypeUnknown = "unknown"
	ChartTypeError   = "error" // Classification failed; summary still usable
)

// Trend labels for chart summaries
const (
	TrendUpward   = "upward"
	TrendDownward = "downward"
	TrendStable   = "stable"
	TrendUnknown  = "unknown"
)

// ChartSummary is the classification result for one chart or graph found in a
// document. Insights are ordered sentences; section builders take the first N
// and never reorder them. DataPoints are opaque key/value records kept in
// extraction order.
type ChartSummary struct {
	ChartType  string                   `json:"chart_type"`
	Title      string                   `json:"title"`
	XAxisLabel string                   `json:"x_axis_label,omitempty"`
	YAxisLabel string                   `json:"y_axis_label,omitempty"`
	DataPoints []map[string]interface{} `json:"data_points,omitempty"`
	Trend      string                   `json:"trend"`
	Insights   []string                 `json:"insights"`
}
