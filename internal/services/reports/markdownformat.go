package reports

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestor/internal/models"
)

// FormatAsMarkdown renders a report as a markdown document suitable for the
// PDF renderer: bullet glyphs become list items, metadata becomes emphasized
// lines. Like FormatAsText it is a pure function of the report.
func FormatAsMarkdown(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s (%s)\n\n",
		report.Metadata.CompanyName,
		titleCase(strings.ReplaceAll(report.Metadata.ReportType, "_", " ")),
		report.Metadata.PeriodCovered)

	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.Metadata.GeneratedDate)

	b.WriteString("## " + report.ExecutiveSummary.Title + "\n\n")
	b.WriteString(report.ExecutiveSummary.Summary)
	b.WriteString("\n\n")

	for _, section := range []models.ReportSection{
		report.KeyFinancialMetrics,
		report.IncomeExpenses,
		report.BalanceSheetHighlights,
		report.CreditQuality,
		report.StrategicUpdates,
		report.MarketOutlook,
	} {
		b.WriteString("## " + section.Title + "\n\n")
		for _, point := range section.BulletPoints {
			b.WriteString("- " + strings.TrimPrefix(point, bulletGlyph) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Investment Recommendation\n\n")
	b.WriteString(report.InvestmentRecommendation)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "---\n\n*Report generated on %s using %s*",
		report.Metadata.GeneratedDate, report.Metadata.AnalysisMethod)

	return strings.TrimSpace(b.String())
}
