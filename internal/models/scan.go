package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// acceptedMediaTypes maps document file extensions to the media type the
// scan pipeline routes on
var acceptedMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
	".html": "text/html",
	".txt":  "text/plain",
}

// MediaTypeForFile resolves a document filename to its pipeline media type.
// Returns an error for extensions the scan pipeline cannot process.
func MediaTypeForFile(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".htm" {
		ext = ".html"
	}
	mediaType, ok := acceptedMediaTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q: accepted types are png, jpg, jpeg, tiff, bmp, pdf, html, txt", ext)
	}
	return mediaType, nil
}

// ScanStatus represents the state of a scan job
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// IsTerminal reports whether the status will not change again
func (s ScanStatus) IsTerminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed
}

// ScanDocument is one uploaded or ingested document attached to a scan job.
// Content is kept in storage but never serialized into API responses.
type ScanDocument struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"` // "image/png", "application/pdf", "text/html", "text/plain"
	Size      int64  `json:"size"`
	Content   []byte `json:"-"`
}

// ScanJob represents one document-scan request and its lifecycle.
//
// Status transitions: pending -> running -> completed|failed. Per-document
// failures accrue on Errors and do not stop the batch; the job only fails
// when no document yields any text at all or report generation itself errors.
type ScanJob struct {
	ID             string         `json:"id"`
	CompanyName    string         `json:"company_name"`
	ReportType     string         `json:"report_type"`
	AnalysisType   string         `json:"analysis_type,omitempty"`
	Source         string         `json:"source,omitempty"` // "upload", "api", "mailbox"
	Status         ScanStatus     `json:"status" badgerhold:"index"`
	Documents      []ScanDocument `json:"documents"`
	DocumentCount  int            `json:"document_count"`
	TextsExtracted int            `json:"texts_extracted"`
	Metrics        int            `json:"metrics_extracted"`
	Charts         int            `json:"charts_analyzed"`
	Errors         []string       `json:"errors,omitempty"`
	ReportID       string         `json:"report_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at" badgerhold:"index"`
	StartedAt      time.Time      `json:"started_at,omitempty"`
	CompletedAt    time.Time      `json:"completed_at,omitempty"`
}

// ScanLogEntry is one log line captured for a scan job, persisted for
// websocket replay. Timestamp is the short display form, FullTimestamp the
// sortable RFC3339 form.
type ScanLogEntry struct {
	Timestamp     string `json:"timestamp"`
	FullTimestamp string `json:"full_timestamp" badgerhold:"index"`
	Level         string `json:"level"` // "INF", "WRN", "ERR", "DBG"
	Message       string `json:"message"`
	ScanID        string `json:"scan_id" badgerhold:"index"`
}

// ScanDocumentInput is the JSON form of a document in POST /api/scans.
// Content arrives base64-encoded per encoding/json []byte convention.
type ScanDocumentInput struct {
	Name      string `json:"name" validate:"required"`
	MediaType string `json:"media_type"`
	Content   []byte `json:"content" validate:"required"`
}

// ScanRequest is the JSON POST /api/scans payload (multipart uploads are
// parsed directly by the handler)
type ScanRequest struct {
	CompanyName  string              `json:"company_name" validate:"required"`
	ReportType   string              `json:"report_type" validate:"omitempty,max=64"`
	AnalysisType string              `json:"analysis_type" validate:"omitempty,oneof=executive_summary detailed_analysis risk_assessment trend_analysis"`
	Documents    []ScanDocumentInput `json:"documents" validate:"required,min=1,dive"`
}
