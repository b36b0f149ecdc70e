package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/quaestor/internal/models"
)

// maxHistoryRows bounds the price table so a multi-year daily range does not
// flood the MCP client. The most recent bars are kept.
const maxHistoryRows = 100

// formatCompanyProfile formats a company profile as markdown
func formatCompanyProfile(profile *models.CompanyProfile) string {
	var sb strings.Builder
	name := profile.LongName
	if name == "" {
		name = profile.ShortName
	}
	if name == "" {
		name = profile.Symbol
	}
	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", name, profile.Symbol))
	if profile.Sector != "" {
		sb.WriteString(fmt.Sprintf("**Sector:** %s\n", profile.Sector))
	}
	if profile.Industry != "" {
		sb.WriteString(fmt.Sprintf("**Industry:** %s\n", profile.Industry))
	}
	if profile.Country != "" {
		sb.WriteString(fmt.Sprintf("**Country:** %s\n", profile.Country))
	}
	if profile.Currency != "" {
		sb.WriteString(fmt.Sprintf("**Currency:** %s\n", profile.Currency))
	}
	if profile.Website != "" {
		sb.WriteString(fmt.Sprintf("**Website:** %s\n", profile.Website))
	}
	sb.WriteString("\n")

	if profile.Summary != "" {
		sb.WriteString("## Business Summary\n\n")
		sb.WriteString(profile.Summary)
		sb.WriteString("\n\n")
	}

	if len(profile.Officers) > 0 {
		sb.WriteString("## Key Officers\n\n")
		for _, officer := range profile.Officers {
			sb.WriteString(fmt.Sprintf("- **%s**", officer.Name))
			if officer.Title != "" {
				sb.WriteString(fmt.Sprintf(" - %s", officer.Title))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// formatQuote formats a market quote as markdown
func formatQuote(quote *models.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Quote: %s\n\n", quote.Symbol))
	sb.WriteString(fmt.Sprintf("**Price:** %.2f %s\n", quote.CurrentPrice, quote.Currency))
	sb.WriteString(fmt.Sprintf("**Change:** %+.2f (%+.2f%%)\n", quote.PriceChange, quote.PercentChange))
	sb.WriteString(fmt.Sprintf("**Previous Close:** %.2f\n", quote.PreviousClose))
	if quote.Exchange != "" {
		sb.WriteString(fmt.Sprintf("**Exchange:** %s\n", quote.Exchange))
	}
	if quote.MarketState != "" {
		sb.WriteString(fmt.Sprintf("**Market State:** %s\n", quote.MarketState))
	}
	if quote.Volume > 0 {
		sb.WriteString(fmt.Sprintf("**Volume:** %d\n", quote.Volume))
	}
	if quote.DayLow > 0 || quote.DayHigh > 0 {
		sb.WriteString(fmt.Sprintf("**Day Range:** %.2f - %.2f\n", quote.DayLow, quote.DayHigh))
	}
	if quote.FiftyTwoWeekLow > 0 || quote.FiftyTwoWeekHigh > 0 {
		sb.WriteString(fmt.Sprintf("**52-Week Range:** %.2f - %.2f\n", quote.FiftyTwoWeekLow, quote.FiftyTwoWeekHigh))
	}
	return sb.String()
}

// formatHistorical formats a historical price series as a markdown table
func formatHistorical(history *models.HistoricalResponse, startDate, endDate string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Historical Prices: %s (%s to %s, %d bars)\n\n",
		history.Symbol, startDate, endDate, history.DataPoints))

	if len(history.History) == 0 {
		sb.WriteString("No price data found for this range.\n")
		return sb.String()
	}

	bars := history.History
	if len(bars) > maxHistoryRows {
		omitted := len(bars) - maxHistoryRows
		bars = bars[omitted:]
		sb.WriteString(fmt.Sprintf("_Showing the most recent %d bars; %d earlier bars omitted. Narrow the date range or use a coarser interval for full detail._\n\n",
			maxHistoryRows, omitted))
	}

	sb.WriteString("| Date | Open | High | Low | Close | Volume |\n")
	sb.WriteString("|------|------|------|-----|-------|--------|\n")
	for _, bar := range bars {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %d |\n",
			bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
	}

	return sb.String()
}

// formatAnalytics formats a price analytics result as markdown
func formatAnalytics(analytics *models.AnalyticsResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Price Analytics: %s\n\n", analytics.Symbol))
	sb.WriteString(fmt.Sprintf("**Period:** %s to %s (%d trading days)\n\n",
		analytics.Period.StartDate, analytics.Period.EndDate, analytics.Period.TradingDays))

	sb.WriteString("### Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Cumulative return: %+.2f%%\n", analytics.Summary.CumulativeReturnPercent))
	sb.WriteString(fmt.Sprintf("- Average daily return: %+.2f%%\n", analytics.Summary.AvgDailyReturnPercent))
	sb.WriteString(fmt.Sprintf("- Volatility: %.2f%%\n", analytics.Summary.VolatilityPercent))
	if analytics.Summary.TrendDescription != "" {
		sb.WriteString(fmt.Sprintf("- Trend: %s\n", analytics.Summary.TrendDescription))
	}
	sb.WriteString("\n")

	sb.WriteString("### Moving Averages\n\n")
	sb.WriteString(fmt.Sprintf("- Last close: %.2f\n", analytics.MovingAverages.LastClosePrice))
	sb.WriteString(fmt.Sprintf("- SMA-20: %s\n", formatSMA(analytics.MovingAverages.SMA20)))
	sb.WriteString(fmt.Sprintf("- SMA-50: %s\n", formatSMA(analytics.MovingAverages.SMA50)))
	if analytics.MovingAverages.MASignal != "" {
		sb.WriteString(fmt.Sprintf("- Signal: %s\n", analytics.MovingAverages.MASignal))
	}

	if len(analytics.ActionableInsights) > 0 {
		sb.WriteString("\n### Actionable Insights\n\n")
		for _, insight := range analytics.ActionableInsights {
			sb.WriteString(fmt.Sprintf("- %s\n", insight))
		}
	}

	return sb.String()
}

// formatSMA renders a nullable moving average value
func formatSMA(value *float64) string {
	if value == nil {
		return "n/a (insufficient data)"
	}
	return fmt.Sprintf("%.2f", *value)
}

// formatReportList formats a report listing as markdown
func formatReportList(records []*models.ReportRecord, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Generated Reports (%d of %d)\n\n", len(records), limit))

	if len(records) == 0 {
		sb.WriteString("No reports found.\n")
		return sb.String()
	}

	for i, record := range records {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, record.CompanyName, record.ReportType))
		sb.WriteString(fmt.Sprintf("   ID: %s\n", record.ID))
		if record.ScanID != "" {
			sb.WriteString(fmt.Sprintf("   Scan: %s\n", record.ScanID))
		}
		sb.WriteString(fmt.Sprintf("   Created: %s\n\n", record.CreatedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatReportRecord returns the stored formatted report text. Records
// persisted without a rendering fall back to a metadata stub.
func formatReportRecord(record *models.ReportRecord) string {
	if record.FormattedText != "" {
		return record.FormattedText
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", record.CompanyName))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", record.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", record.ReportType))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n\n", record.CreatedAt.Format(time.RFC3339)))
	sb.WriteString("No formatted text is stored for this report.\n")
	return sb.String()
}
