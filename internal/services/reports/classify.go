package reports

import (
	"strings"

	"github.com/ternarybob/quaestor/internal/models"
)

// Classification buckets. A metric may land in several buckets or none;
// "Cost of Risk" sits in both efficiency (cost) and credit (risk), which is
// accepted behavior.
const (
	BucketProfitability = "profitability"
	BucketEfficiency    = "efficiency"
	BucketCapital       = "capital"
	BucketIncome        = "income"
	BucketExpense       = "expense"
	BucketAsset         = "asset"
	BucketLiability     = "liability"
	BucketCreditRisk    = "credit_risk"
)

var bucketKeywords = map[string][]string{
	BucketProfitability: {"profit", "income", "margin"},
	BucketEfficiency:    {"ratio", "efficiency", "cost"},
	BucketCapital:       {"equity", "capital", "tier 1", "leverage"},
	BucketIncome:        {"income", "revenue", "interest"},
	BucketExpense:       {"expense", "cost"},
	BucketAsset:         {"asset", "loan"},
	BucketLiability:     {"liability", "deposit"},
	BucketCreditRisk:    {"risk", "credit", "impairment", "provision"},
}

// Classify routes metrics into buckets by case-insensitive substring match
// of bucket keywords against the metric name. Every bucket key is present in
// the result; unmatched metrics simply appear in none of them.
func Classify(metrics []models.FinancialMetric) map[string][]models.FinancialMetric {
	buckets := make(map[string][]models.FinancialMetric, len(bucketKeywords))
	for bucket, keywords := range bucketKeywords {
		buckets[bucket] = filterByKeywords(metrics, keywords)
	}
	return buckets
}

func filterByKeywords(metrics []models.FinancialMetric, keywords []string) []models.FinancialMetric {
	var matched []models.FinancialMetric
	for _, m := range metrics {
		name := strings.ToLower(m.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				matched = append(matched, m)
				break
			}
		}
	}
	return matched
}
