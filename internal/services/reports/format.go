package reports

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/ternarybob/quaestor/internal/models"
)

// Every bullet line starts with this glyph
const bulletGlyph = "● "

func unitContainsAny(unit string, fragments ...string) bool {
	lower := strings.ToLower(unit)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func groupedInt(value float64) string {
	return humanize.Comma(int64(math.Round(value)))
}

// formatKeyMetricValue renders a value for the Key Financial Metrics section:
// magnitude units become a grouped integer with the whole unit uppercased,
// percent units get one decimal, everything else two decimals bare.
func formatKeyMetricValue(m models.FinancialMetric) string {
	switch {
	case unitContainsAny(m.Unit, "million", "billion", "thousand"):
		return groupedInt(m.Value) + " " + strings.ToUpper(m.Unit)
	case strings.Contains(m.Unit, "%"):
		return fmt.Sprintf("%.1f%%", m.Value)
	default:
		return fmt.Sprintf("%.2f", m.Value)
	}
}

// formatIncomeValue keeps the unit's original case for magnitude units
func formatIncomeValue(m models.FinancialMetric) string {
	if unitContainsAny(m.Unit, "million", "billion") {
		return groupedInt(m.Value) + " " + m.Unit
	}
	return fmt.Sprintf("%.2f", m.Value)
}

// formatBalanceValue uppercases magnitude units like the key metrics rule;
// unitless values render as grouped integers.
func formatBalanceValue(m models.FinancialMetric) string {
	if unitContainsAny(m.Unit, "million", "billion", "thousand") {
		return groupedInt(m.Value) + " " + strings.ToUpper(m.Unit)
	}
	return groupedInt(m.Value)
}

// formatCreditValue renders basis points at zero decimals with the spelled
// out suffix, percentages at one decimal, everything else at two.
func formatCreditValue(m models.FinancialMetric) string {
	switch {
	case unitContainsAny(m.Unit, "bps", "basis point"):
		return fmt.Sprintf("%.0f basis points", m.Value)
	case strings.Contains(m.Unit, "%"):
		return fmt.Sprintf("%.1f%%", m.Value)
	default:
		return fmt.Sprintf("%.2f", m.Value)
	}
}

func bulletLine(name, value string, suffix string) string {
	line := bulletGlyph + name + ": " + value
	if suffix != "" {
		line += ", " + suffix
	}
	return line
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
