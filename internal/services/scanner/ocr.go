package scanner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// OCRUnavailableText stands in for a document's text when no OCR binary
// could be located. The report pipeline treats it as ordinary document text,
// so a scan keeps going on machines without tesseract installed.
const OCRUnavailableText = "OCR not available - install tesseract for image text extraction"

const defaultOCRTimeout = 60 * time.Second

// OCREngine shells out to a tesseract-style command for image text
// extraction. The binary is resolved once at construction; a missing binary
// is not an error, the engine just reports itself unavailable.
type OCREngine struct {
	binaryPath string
	languages  string
	timeout    time.Duration
	logger     arbor.ILogger
}

// NewOCREngine locates the OCR binary and returns an engine. command may be
// a bare name resolved via PATH or an absolute path; empty defaults to
// "tesseract".
func NewOCREngine(command string, languages string, timeout time.Duration, logger arbor.ILogger) *OCREngine {
	if command == "" {
		command = "tesseract"
	}
	if languages == "" {
		languages = "eng"
	}
	if timeout <= 0 {
		timeout = defaultOCRTimeout
	}

	path, err := exec.LookPath(command)
	if err != nil {
		logger.Warn().
			Str("command", command).
			Msg("OCR binary not found, image documents will carry placeholder text")
		path = ""
	} else {
		logger.Info().
			Str("command", command).
			Str("resolved_path", path).
			Msg("Found OCR binary")
	}

	return &OCREngine{
		binaryPath: path,
		languages:  languages,
		timeout:    timeout,
		logger:     logger,
	}
}

// Available reports whether an OCR binary was located
func (o *OCREngine) Available() bool {
	return o.binaryPath != ""
}

// ExtractText runs OCR over the image bytes and returns the recognized text.
// Failures never surface as errors: a missing binary or failed run yields a
// descriptive string in place of the text, so one unreadable image cannot
// abort a scan batch.
func (o *OCREngine) ExtractText(ctx context.Context, name string, content []byte) string {
	if !o.Available() {
		return OCRUnavailableText
	}

	tmpDir, err := os.MkdirTemp("", "quaestor-ocr-*")
	if err != nil {
		return fmt.Sprintf("OCR Error: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	imagePath := filepath.Join(tmpDir, "input"+imageExtension(name))
	if err := os.WriteFile(imagePath, content, 0o600); err != nil {
		return fmt.Sprintf("OCR Error: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// tesseract <image> stdout -l <langs> prints recognized text to stdout
	cmd := exec.CommandContext(ctx, o.binaryPath, imagePath, "stdout", "-l", o.languages)
	output, err := cmd.Output()
	if err != nil {
		o.logger.Warn().
			Err(err).
			Str("document", name).
			Msg("OCR run failed")
		return fmt.Sprintf("OCR Error: %v", err)
	}

	o.logger.Debug().
		Str("document", name).
		Int("text_length", len(output)).
		Msg("OCR extraction complete")

	return string(output)
}

// imageExtension keeps the original extension so the OCR binary can detect
// the format; unrecognized names default to .png.
func imageExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".tiff", ".bmp":
		return ext
	}
	return ".png"
}
