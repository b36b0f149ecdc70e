package reports

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestor/internal/models"
)

// FormatAsText renders a report into its fixed text layout. The output is a
// pure function of the report, so repeated calls are byte-identical. Empty
// sections keep their heading with nothing beneath it.
func FormatAsText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s (%s)\n\n",
		report.Metadata.CompanyName,
		titleCase(strings.ReplaceAll(report.Metadata.ReportType, "_", " ")),
		report.Metadata.PeriodCovered)

	b.WriteString("## " + report.ExecutiveSummary.Title + "\n")
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
		b.WriteString("## " + section.Title + "\n")
		b.WriteString(strings.Join(section.BulletPoints, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("## Investment Recommendation\n")
	b.WriteString(report.InvestmentRecommendation)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "---\n*Report generated on %s using %s*",
		report.Metadata.GeneratedDate, report.Metadata.AnalysisMethod)

	return strings.TrimSpace(b.String())
}
