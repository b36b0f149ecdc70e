package models

// FinancialMetric is a single extracted data point from a financial document.
// Name and Value are always present; Unit, Period and Trend are free-form and
// may be empty. Records are treated as immutable once constructed - the report
// pipeline reads them, it never mutates them. Duplicate names are legal and
// are processed independently.
type FinancialMetric struct {
	Name   string  `json:"name"`            // Classification key, e.g. "Net Profit"
	Value  float64 `json:"value"`           // Numeric value as extracted
	Unit   string  `json:"unit"`            // "%", "million EUR", "basis points", "" ...
	Period string  `json:"period"`          // "Q3 2023", "current", free-form
	Trend  string  `json:"trend,omitempty"` // Informational only, not used by builders
}
