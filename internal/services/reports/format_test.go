package reports

import (
	"testing"

	"github.com/ternarybob/quaestor/internal/models"
)

func TestFormatKeyMetricValue(t *testing.T) {
	tests := []struct {
		name   string
		metric models.FinancialMetric
		want   string
	}{
		{
			name:   "million unit grouped and uppercased",
			metric: models.FinancialMetric{Name: "Net Interest Income", Value: 1638.0, Unit: "million EUR"},
			want:   "1,638 MILLION EUR",
		},
		{
			name:   "billion unit",
			metric: models.FinancialMetric{Name: "Total Assets", Value: 403.8, Unit: "billion EUR"},
			want:   "404 BILLION EUR",
		},
		{
			name:   "thousand unit",
			metric: models.FinancialMetric{Name: "Branches", Value: 1200.0, Unit: "thousand"},
			want:   "1,200 THOUSAND",
		},
		{
			name:   "percent gets one decimal",
			metric: models.FinancialMetric{Name: "Return on Equity", Value: 11.6, Unit: "%"},
			want:   "11.6%",
		},
		{
			name:   "percent rounds",
			metric: models.FinancialMetric{Name: "CET1 Ratio", Value: 14.16, Unit: "%"},
			want:   "14.2%",
		},
		{
			name:   "bare unit gets two decimals",
			metric: models.FinancialMetric{Name: "Earnings Per Share", Value: 0.78, Unit: "EUR"},
			want:   "0.78",
		},
		{
			name:   "no unit",
			metric: models.FinancialMetric{Name: "Leverage", Value: 5.1},
			want:   "5.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatKeyMetricValue(tt.metric); got != tt.want {
				t.Errorf("formatKeyMetricValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatIncomeValueKeepsUnitCase(t *testing.T) {
	tests := []struct {
		name   string
		metric models.FinancialMetric
		want   string
	}{
		{
			name:   "million unit keeps original case",
			metric: models.FinancialMetric{Name: "Net Interest Income", Value: 1638.0, Unit: "million EUR"},
			want:   "1,638 million EUR",
		},
		{
			name:   "percent falls through to two decimals",
			metric: models.FinancialMetric{Name: "Cost/Income Ratio", Value: 59.2, Unit: "%"},
			want:   "59.20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatIncomeValue(tt.metric); got != tt.want {
				t.Errorf("formatIncomeValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatBalanceValue(t *testing.T) {
	tests := []struct {
		name   string
		metric models.FinancialMetric
		want   string
	}{
		{
			name:   "billion uppercased",
			metric: models.FinancialMetric{Name: "Total Assets", Value: 403.8, Unit: "billion EUR"},
			want:   "404 BILLION EUR",
		},
		{
			name:   "other units render as grouped integer",
			metric: models.FinancialMetric{Name: "Return on Equity", Value: 11.6, Unit: "%"},
			want:   "12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatBalanceValue(tt.metric); got != tt.want {
				t.Errorf("formatBalanceValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCreditValue(t *testing.T) {
	tests := []struct {
		name   string
		metric models.FinancialMetric
		want   string
	}{
		{
			name:   "basis points zero decimals",
			metric: models.FinancialMetric{Name: "Cost of Risk", Value: -2.0, Unit: "basis points"},
			want:   "-2 basis points",
		},
		{
			name:   "bps shorthand",
			metric: models.FinancialMetric{Name: "Cost of Risk", Value: 35.4, Unit: "bps"},
			want:   "35 basis points",
		},
		{
			name:   "percent one decimal",
			metric: models.FinancialMetric{Name: "Stage 3 Ratio", Value: 1.9, Unit: "%"},
			want:   "1.9%",
		},
		{
			name:   "bare two decimals",
			metric: models.FinancialMetric{Name: "Impairment Coverage", Value: 0.5},
			want:   "0.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCreditValue(tt.metric); got != tt.want {
				t.Errorf("formatCreditValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBulletLine(t *testing.T) {
	if got := bulletLine("Net Profit", "690 MILLION EUR", ""); got != "● Net Profit: 690 MILLION EUR" {
		t.Errorf("bulletLine without suffix = %q", got)
	}
	if got := bulletLine("Client Deposits", "225 BILLION EUR", "stable compared to previous period"); got != "● Client Deposits: 225 BILLION EUR, stable compared to previous period" {
		t.Errorf("bulletLine with suffix = %q", got)
	}
}
