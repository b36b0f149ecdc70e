package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/interfaces"
)

// Extractor pulls text out of PDF bytes using pdfcpu. pdfcpu operates on
// files, so each call stages the document in its own temp directory; that
// keeps concurrent scan workers from clobbering each other.
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF text extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// ExtractText extracts text content from the given PDF bytes. Pages are
// joined with a page-separator line so downstream pattern matching sees
// document order.
func (e *Extractor) ExtractText(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}

	workDir, err := os.MkdirTemp("", "quaestor-pdf-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to stage PDF: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(pdfPath, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := readPageContent(outDir)

	var fullText strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok || text == "" {
			continue
		}
		if fullText.Len() > 0 {
			fmt.Fprintf(&fullText, "\n\n--- Page %d ---\n\n", pageNum)
		}
		fullText.WriteString(text)
	}

	e.logger.Debug().
		Int("pages", pageCount).
		Int("length", fullText.Len()).
		Msg("PDF text extracted")

	return fullText.String(), nil
}

// readPageContent maps pdfcpu's per-page content files ("Content_page_<n>")
// back to page numbers. Unreadable files are skipped; the caller treats
// missing pages as empty.
func readPageContent(dir string) map[int]string {
	pageTexts := make(map[int]string)

	files, err := os.ReadDir(dir)
	if err != nil {
		return pageTexts
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			continue
		}
		pageTexts[pageNum] = string(content)
	}

	return pageTexts
}
