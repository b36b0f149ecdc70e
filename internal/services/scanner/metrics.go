package scanner

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ternarybob/quaestor/internal/models"
)

// metricPattern pairs a canonical metric key with its extraction regex.
// Slice order is match order, so repeated runs over the same text produce
// identical metric lists. Patterns with a second capture group pick up an
// optional magnitude word (million/billion/thousand) or a ratio/margin
// label; the unit-aware report formatters key off that word later.
type metricPattern struct {
	key     string
	pattern *regexp.Regexp
}

var metricPatterns = []metricPattern{
	{"net_profit", regexp.MustCompile(`(?i)net profit[:\s]*\$?([\d,]+\.?\d*)\s*(million|billion|thousand)?`)},
	{"revenue", regexp.MustCompile(`(?i)revenue[:\s]*\$?([\d,]+\.?\d*)\s*(million|billion|thousand)?`)},
	{"eps", regexp.MustCompile(`(?i)eps?[:\s]*\$?([\d,]+\.?\d*)`)},
	{"roe", regexp.MustCompile(`(?i)roe[:\s]*([\d,]+\.?\d*)%?`)},
	{"assets", regexp.MustCompile(`(?i)total assets[:\s]*\$?([\d,]+\.?\d*)\s*(million|billion|thousand)?`)},
	{"liabilities", regexp.MustCompile(`(?i)total liabilities[:\s]*\$?([\d,]+\.?\d*)\s*(million|billion|thousand)?`)},
	{"equity", regexp.MustCompile(`(?i)total equity[:\s]*\$?([\d,]+\.?\d*)\s*(million|billion|thousand)?`)},
	{"ratio", regexp.MustCompile(`(?i)([\d,]+\.?\d*)%?\s*(ratio|margin)`)},
}

// ParseMetrics extracts financial metrics from document text. Names are
// Title-Cased from the pattern key, the period is always "current", and
// values that fail numeric parsing are dropped without error.
func ParseMetrics(text string) []models.FinancialMetric {
	var metrics []models.FinancialMetric

	for _, mp := range metricPatterns {
		for _, match := range mp.pattern.FindAllStringSubmatch(text, -1) {
			value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
			if err != nil {
				continue
			}

			unit := ""
			if len(match) > 2 {
				unit = match[2]
			}

			metrics = append(metrics, models.FinancialMetric{
				Name:   metricName(mp.key),
				Value:  value,
				Unit:   unit,
				Period: "current",
			})
		}
	}

	return metrics
}

// metricName turns a pattern key like "net_profit" into "Net Profit"
func metricName(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
