package common

import (
	"github.com/google/uuid"
)

// NewScanID generates a unique scan job ID with the "scan_" prefix
// Format: scan_<uuid>
func NewScanID() string {
	return "scan_" + uuid.New().String()
}

// NewReportID generates a unique report ID with the "report_" prefix
// Format: report_<uuid>
func NewReportID() string {
	return "report_" + uuid.New().String()
}
