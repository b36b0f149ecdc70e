package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)

	tests := []struct {
		name     string
		markdown string
		title    string
		wantErr  bool
	}{
		{
			name: "report markdown",
			markdown: `# ABN AMRO Bank Quarterly Report (Q3 2024)

## Executive Summary
This quarterly report presents a comprehensive analysis.

## Key Financial Metrics
- Net Profit: 690 MILLION
- Return on Equity: 11.6%`,
			title:   "ABN AMRO Bank Quarterly Report",
			wantErr: false,
		},
		{
			name:     "empty markdown",
			markdown: "",
			title:    "Empty Doc",
			wantErr:  false,
		},
		{
			name: "code and table",
			markdown: `# Header 1

Some text.

| Metric | Value |
|--------|-------|
| Net Profit | 690 |

` + "```\nraw extract\n```",
			title:   "Complex Doc",
			wantErr: false,
		},
		{
			name:     "bold and italic",
			markdown: "Normal **Bold** *Italic* ***BoldItalic***",
			title:    "Styling",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfBytes, err := service.ConvertMarkdownToPDF(tt.markdown, tt.title)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestConvertMarkdownToPDFTables(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)

	markdown := `
# Metric Comparison

| Metric | Current | Prior | Change |
|--------|---------|-------|--------|
| Net Profit | 690 | 654 | +5.5% |
| Operating Income | 2,300 | 2,210 | +4.1% |

End of table.
`
	pdfBytes, err := service.ConvertMarkdownToPDF(markdown, "Metric Comparison")
	assert.NoError(t, err)
	assert.Greater(t, len(pdfBytes), 500)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestStripFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "no frontmatter",
			markdown: "# Report\n\nBody.",
			want:     "# Report\n\nBody.",
		},
		{
			name:     "frontmatter removed",
			markdown: "---\nsubject: Q3 report\n---\n# Report\n\nBody.",
			want:     "# Report\n\nBody.",
		},
		{
			name:     "unterminated frontmatter kept",
			markdown: "---\nsubject: Q3 report\n# Report",
			want:     "---\nsubject: Q3 report\n# Report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFrontmatter(tt.markdown))
		})
	}
}
