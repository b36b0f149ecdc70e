package analyzer

import (
	"strings"
	"testing"
)

func TestStructureAnalysis(t *testing.T) {
	narrative := `Overview of the quarter.

## Key Financial Metrics Summary
Net profit of 690 million EUR.
CET1 remains strong.

## Balance Sheet Highlights
Total assets stable at 379 billion.

## Market Conditions and Outlook
Rate environment remains supportive.`

	sections := StructureAnalysis(narrative)

	if got := sections["introduction"]; got != "Overview of the quarter." {
		t.Errorf("introduction = %q", got)
	}

	metrics := sections["key_financial_metrics"]
	if !strings.HasPrefix(metrics, "## Key Financial Metrics Summary") {
		t.Errorf("header line not kept with its section: %q", metrics)
	}
	if !strings.Contains(metrics, "CET1 remains strong.") {
		t.Errorf("body line missing from section: %q", metrics)
	}

	if _, ok := sections["balance_sheet"]; !ok {
		t.Error("balance_sheet section not detected")
	}
	if got := sections["market_outlook"]; !strings.Contains(got, "Rate environment") {
		t.Errorf("market_outlook = %q", got)
	}
}

func TestStructureAnalysisPatternOrder(t *testing.T) {
	// "Strategic outlook" matches both the strategic and market patterns;
	// the earlier pattern in the table wins.
	sections := StructureAnalysis("Strategic outlook improving.")

	if _, ok := sections["strategic_updates"]; !ok {
		t.Fatalf("expected strategic_updates, got %v", sections)
	}
	if _, ok := sections["market_outlook"]; ok {
		t.Error("line landed in market_outlook despite earlier strategic match")
	}
}

func TestStructureAnalysisEmptyText(t *testing.T) {
	sections := StructureAnalysis("")
	if len(sections) != 0 {
		t.Errorf("expected no sections for empty text, got %v", sections)
	}
}

func TestStructureAnalysisSkipsBlankLines(t *testing.T) {
	sections := StructureAnalysis("line one\n\n\nline two")
	if got := sections["introduction"]; got != "line one\nline two" {
		t.Errorf("introduction = %q", got)
	}
}
