package scanner

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/quaestor/internal/models"
)

// extractText routes a document to a text extractor by media type. OCR
// failures come back as placeholder text rather than errors; PDF and HTML
// extraction failures are real errors recorded against the scan job.
func (s *Service) extractText(ctx context.Context, doc models.ScanDocument) (string, error) {
	switch {
	case isImageDocument(doc):
		return s.ocr.ExtractText(ctx, doc.Name, doc.Content), nil

	case isPDFDocument(doc):
		if s.pdf == nil {
			return "", fmt.Errorf("no PDF extractor configured")
		}
		text, err := s.pdf.ExtractText(ctx, doc.Content)
		if err != nil {
			return "", fmt.Errorf("pdf extraction failed: %w", err)
		}
		return text, nil

	case isHTMLDocument(doc):
		return htmlToText(doc.Content)

	default:
		return string(doc.Content), nil
	}
}

func isImageDocument(doc models.ScanDocument) bool {
	if strings.HasPrefix(doc.MediaType, "image/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".png", ".jpg", ".jpeg", ".tiff", ".bmp":
		return true
	}
	return false
}

func isPDFDocument(doc models.ScanDocument) bool {
	return strings.HasPrefix(doc.MediaType, "application/pdf") ||
		strings.EqualFold(filepath.Ext(doc.Name), ".pdf")
}

func isHTMLDocument(doc models.ScanDocument) bool {
	if strings.HasPrefix(doc.MediaType, "text/html") {
		return true
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// htmlToText prunes boilerplate from an HTML document and converts the rest
// to markdown. Downstream regex extraction handles markdown the same as OCR
// output.
func htmlToText(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	html, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(html) == "" {
		// Fragment without a body wrapper; convert the whole document
		html, err = doc.Html()
		if err != nil {
			return "", fmt.Errorf("failed to serialize HTML: %w", err)
		}
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("html to markdown conversion failed: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}
