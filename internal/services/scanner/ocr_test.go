package scanner

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func TestOCREngineMissingBinary(t *testing.T) {
	engine := NewOCREngine("quaestor-no-such-ocr-binary", "", 0, arbor.NewLogger())

	if engine.Available() {
		t.Fatal("expected engine to be unavailable")
	}

	text := engine.ExtractText(context.Background(), "scan.png", []byte("bytes"))
	if text != OCRUnavailableText {
		t.Errorf("text = %q, want %q", text, OCRUnavailableText)
	}
}

func TestOCREngineRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX echo binary")
	}

	// echo stands in for the OCR binary and prints its arguments, which is
	// enough to verify the invocation shape
	engine := NewOCREngine("echo", "deu", 5*time.Second, arbor.NewLogger())
	if !engine.Available() {
		t.Skip("echo not on PATH")
	}

	text := engine.ExtractText(context.Background(), "balance.png", []byte("fake image"))

	if strings.HasPrefix(text, "OCR Error:") {
		t.Fatalf("unexpected OCR error: %s", text)
	}
	if !strings.Contains(text, "input.png") {
		t.Errorf("expected image path in output, got %q", text)
	}
	if !strings.Contains(text, "-l deu") {
		t.Errorf("expected language flag in output, got %q", text)
	}
}

func TestOCREngineCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX false binary")
	}

	engine := NewOCREngine("false", "eng", 5*time.Second, arbor.NewLogger())
	if !engine.Available() {
		t.Skip("false not on PATH")
	}

	text := engine.ExtractText(context.Background(), "scan.jpg", []byte("fake image"))
	if !strings.HasPrefix(text, "OCR Error:") {
		t.Errorf("text = %q, want an OCR Error string", text)
	}
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"scan.PNG", ".png"},
		{"photo.jpeg", ".jpeg"},
		{"page.tiff", ".tiff"},
		{"chart.webp", ".png"},
		{"noextension", ".png"},
	}

	for _, tt := range tests {
		if got := imageExtension(tt.name); got != tt.want {
			t.Errorf("imageExtension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
