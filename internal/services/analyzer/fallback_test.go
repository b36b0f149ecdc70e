package analyzer

import (
	"math"
	"strings"
	"testing"
)

func TestExtractMetricsFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantType string
		wantVal  float64
		wantUnit string
	}{
		{
			name:     "net profit with currency symbol",
			text:     "Net Profit: $2,300.5 million reported",
			wantType: "net_profit",
			wantVal:  2300.5,
			wantUnit: "currency",
		},
		{
			name:     "roe with percent sign",
			text:     "ROE: 11.6%",
			wantType: "roe",
			wantVal:  11.6,
			wantUnit: "percentage",
		},
		{
			name:     "total assets with separators",
			text:     "Total Assets 379,581",
			wantType: "assets",
			wantVal:  379581,
			wantUnit: "currency",
		},
		{
			name:     "eps",
			text:     "EPS: 0.79",
			wantType: "eps",
			wantVal:  0.79,
			wantUnit: "units",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := extractMetricsFromText(tt.text)
			if len(metrics) == 0 {
				t.Fatalf("extractMetricsFromText(%q) found nothing", tt.text)
			}

			found := false
			for _, m := range metrics {
				if m.Type == tt.wantType {
					found = true
					if math.Abs(m.Value-tt.wantVal) > 0.0001 {
						t.Errorf("value = %f, want %f", m.Value, tt.wantVal)
					}
					if m.Unit != tt.wantUnit {
						t.Errorf("unit = %q, want %q", m.Unit, tt.wantUnit)
					}
				}
			}
			if !found {
				t.Errorf("no %s metric extracted from %q", tt.wantType, tt.text)
			}
		})
	}
}

func TestExtractMetricsSkipsMalformed(t *testing.T) {
	// The capture group only admits digits, commas, and dots, so a malformed
	// figure simply never matches.
	metrics := extractMetricsFromText("Revenue: $N/A this quarter")
	for _, m := range metrics {
		if m.Type == "revenue" {
			t.Errorf("extracted revenue %f from malformed text", m.Value)
		}
	}
}

func TestExtractTrendsFromText(t *testing.T) {
	trends := extractTrendsFromText("Strong GROWTH this year while margins decline")

	want := []string{"growth", "decline"}
	if len(trends) != len(want) {
		t.Fatalf("extractTrendsFromText() = %v, want %v", trends, want)
	}
	for i := range want {
		if trends[i] != want[i] {
			t.Errorf("trends[%d] = %q, want %q", i, trends[i], want[i])
		}
	}
}

func TestFormatMetricsSummary(t *testing.T) {
	tests := []struct {
		name    string
		metrics []extractedMetric
		want    string
	}{
		{
			name:    "empty",
			metrics: nil,
			want:    "No specific metrics identified in the document.",
		},
		{
			name: "currency grouped with two decimals",
			metrics: []extractedMetric{
				{Type: "net_profit", Value: 2300.5, Unit: "currency"},
			},
			want: "- Net Profit: $2,300.50",
		},
		{
			name: "percentage",
			metrics: []extractedMetric{
				{Type: "roe", Value: 11.6, Unit: "percentage"},
			},
			want: "- Roe: 11.60%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricsSummary(tt.metrics)
			if got != tt.want {
				t.Errorf("formatMetricsSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMetricsSummaryCapsAtFive(t *testing.T) {
	metrics := make([]extractedMetric, 8)
	for i := range metrics {
		metrics[i] = extractedMetric{Type: "revenue", Value: float64(i), Unit: "currency"}
	}

	got := formatMetricsSummary(metrics)
	if lines := strings.Count(got, "\n") + 1; lines != 5 {
		t.Errorf("summary has %d lines, want 5", lines)
	}
}

func TestFormatTrendAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		trends   []string
		wantTail string
	}{
		{
			name:     "no trends",
			trends:   nil,
			wantTail: "No clear trend patterns identified.",
		},
		{
			name:     "positive dominates",
			trends:   []string{"growth", "rise", "fall"},
			wantTail: "Overall positive momentum detected.",
		},
		{
			name:     "negative dominates",
			trends:   []string{"decline", "worsen", "growth"},
			wantTail: "Negative trends require attention.",
		},
		{
			name:     "tie reads as mixed",
			trends:   []string{"growth", "fall"},
			wantTail: "Mixed or stable trends observed.",
		},
		{
			name:     "neutral words only",
			trends:   []string{"up", "down"},
			wantTail: "Mixed or stable trends observed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTrendAnalysis(tt.trends)
			if !strings.HasSuffix(got, tt.wantTail) {
				t.Errorf("formatTrendAnalysis(%v) = %q, want suffix %q", tt.trends, got, tt.wantTail)
			}
		})
	}
}

func TestRuleBasedAnalysis(t *testing.T) {
	prompt := "Quarterly figures: Net Profit: $690 million, ROE: 11.6%. Revenue growth continued."

	analysis := RuleBasedAnalysis(prompt)

	for _, want := range []string{
		"# Financial Analysis Summary",
		"## Key Financial Metrics",
		"- Net Profit: $690.00",
		"## Trend Analysis",
		"growth",
		"## Investment Recommendation",
		"*Note: This is a rule-based analysis. For more sophisticated insights, please configure LLM API access.*",
	} {
		if !strings.Contains(analysis, want) {
			t.Errorf("analysis missing %q:\n%s", want, analysis)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"net profit", "Net Profit"},
		{"QUARTERLY REPORT", "Quarterly Report"},
		{"eps", "Eps"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
